// Package b2ginfo parses the text printed by the b2g-info diagnostic command
// into typed snapshots.
//
// A b2g-info dump has three regions, one after another:
//
//	                          |     megabytes     |
//	           NAME  PID PPID CPU(s) NICE  USS  PSS  RSS SWAP VSIZE OOM_ADJ USER
//	            b2g  176    1   96.9    0 49.0 53.6 62.0  0.0 197.5       0 root
//	     Homescreen  770  383    4.4   18  5.2  9.0 15.4  0.0  75.7       8 u0_a770
//
//	System memory info:
//
//	            Total 458.4 MB
//	     Free + cache 295.1 MB
//
//	Low-memory killer parameters:
//
//	  notify_trigger 14336 KB
//
//	  oom_adj min_free
//	        0  4096 KB
//
// The second line is always the column header. Rows below it are process
// rows until a section marker switches the parser into system-memory or
// low-memory mode for the rest of the input.
package b2ginfo
