package kfmt

import "coopos/kernel/conf"

var (
	// quietBootFn reports whether successful boot steps should be muted.
	quietBootFn = func() bool { return conf.Active().QuietBoot }
)

// ReportOK prints an "[OK]" status line unless the active boot configuration
// requests a quiet boot.
func ReportOK(format string, args ...interface{}) {
	if quietBootFn() {
		return
	}

	reportLine("[OK] ", format, args)
}

// ReportErr prints an "[ERR]" status line. Errors are always reported.
func ReportErr(format string, args ...interface{}) {
	reportLine("[ERR] ", format, args)
}

// reportLine emits tag, the formatted message and a newline with a single
// write to the active sink.
func reportLine(tag, format string, args []interface{}) {
	p := printer{w: GetOutputSink()}
	p.writeString(tag)
	p.format(format, args)
	p.writeByte('\n')
	p.flush()
}
