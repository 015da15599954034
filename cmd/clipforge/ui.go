package main

import (
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"clipforge/internal/generation"
)

type ui struct {
	title func(a ...interface{}) string
	ok    func(a ...interface{}) string
	info  func(a ...interface{}) string
	warn  func(a ...interface{}) string
	err   func(a ...interface{}) string
	dim   func(a ...interface{}) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// downloadProgress builds a per-file progress callback backed by a terminal
// bar. The bar is created lazily because the total size is only known once
// the download starts.
func downloadProgress(label string) generation.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(downloaded, total int64) {
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(label),
				progressbar.OptionSetWidth(18),
				progressbar.OptionShowBytes(true),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set64(downloaded)
	}
}
