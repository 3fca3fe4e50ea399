package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"aromasheet/internal/formulation"
	"aromasheet/internal/workbench"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// noticePrinter writes notices to w as "[OK] message" lines.
func noticePrinter(w io.Writer) workbench.Notifier {
	colorize := shouldColorize(w)
	return workbench.NotifierFunc(func(_ context.Context, n workbench.Notice) {
		label, color := "INFO", ansiBlue
		switch n.Level {
		case workbench.NoticeSuccess:
			label, color = "OK", ansiGreen
		case workbench.NoticeWarning:
			label, color = "WARN", ansiYellow
		}
		fmt.Fprintln(w, paint("["+label+"] "+n.Message, color, colorize))
	})
}

// classificationBadge renders the label with the color of its class.
func classificationBadge(c formulation.Classification, colorize bool) string {
	if c.Label == "" {
		return paint("(no aromatic ingredient)", ansiGray, colorize)
	}
	color := ansiGreen
	switch c.Class {
	case formulation.ClassAroma:
		color = ansiRed
	case formulation.ClassNaturalAromaOfWithOthers:
		color = ansiYellow
	}
	return paint(c.Label, color, colorize)
}

func renderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return paint(line, ansiBlue, colorize)
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + " g"
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
