// Package cli implements the b2gmon command-line interface.
//
// The root command is the watch loop itself; everything else is a small
// helper around the same config and device plumbing:
//
//	b2gmon [flags]        - Poll b2g-info, show it live, write the report
//	b2gmon watch [flags]  - Same as the root command
//	b2gmon devices        - List attached devices
//	b2gmon snapshot       - Poll once and print the parsed dump
//	b2gmon doctor         - Check config, adb and the device
//	b2gmon init           - Create .b2gmon.yaml
//	b2gmon track <app>    - Add an app to the config's tracked list
//	b2gmon version        - Print build information
//
// # Configuration
//
// Every command loads config the same way: the --config path, then
// .b2gmon.yaml found from the working directory upwards, then
// ~/.config/b2gmon/config.yaml, with B2GMON_* environment variables on
// top. Watch flags that were set explicitly override all of those.
//
// # Device access
//
// adb runs locally through os/exec, or on another machine over SSH when
// ssh.host (or --ssh) is set. Tests swap newRunner for a scripted runner.
package cli
