// Package diag formats compiler diagnostics and bundler pipeline errors for
// the error stream, in the same plain/pretty styles tsgo itself uses —
// pretty mode when stderr is a terminal (and neither NO_COLOR nor
// FORCE_COLOR overrides that), plain "file(line,col): category TSxxxx:
// message" otherwise.
package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/fridacompile/gobundle/internal/tscompile"
)

// Category mirrors tsgo's diagnostic category enum.
type Category int

const (
	CategoryWarning    Category = 0
	CategoryError      Category = 1
	CategorySuggestion Category = 2
	CategoryMessage    Category = 3
)

func (c Category) Name() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategorySuggestion:
		return "suggestion"
	case CategoryMessage:
		return "message"
	}
	return "unknown"
}

const (
	colorReset  = "[0m"
	colorRed    = "[91m"
	colorYellow = "[93m"
	colorCyan   = "[96m"
	colorGrey   = "[90m"
	colorGutter = "[7m"
)

func categoryColor(cat Category) string {
	switch cat {
	case CategoryError:
		return colorRed
	case CategoryWarning:
		return colorYellow
	case CategorySuggestion:
		return colorGrey
	case CategoryMessage:
		return "[94m"
	}
	return ""
}

// IsPrettyOutput mirrors tsgo's shouldBePretty: NO_COLOR disables it,
// FORCE_COLOR forces it, otherwise it follows whether stderr is a tty.
func IsPrettyOutput() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Reporter formats and writes one diagnostic.
type Reporter func(d tscompile.Diagnostic)

// NewReporter builds a Reporter in plain or pretty style.
func NewReporter(w io.Writer, cwd string, pretty bool) Reporter {
	if pretty {
		return func(d tscompile.Diagnostic) {
			writePretty(w, d, cwd)
			fmt.Fprint(w, "\n")
		}
	}
	return func(d tscompile.Diagnostic) {
		writePlain(w, d, cwd)
	}
}

func writePlain(w io.Writer, d tscompile.Diagnostic, cwd string) {
	cat := CategoryError
	code := 0
	if d.Raw != nil {
		cat = Category(ast.Diagnostic_Category(d.Raw))
		code = d.Raw.Code()
		if d.Raw.File() != nil {
			line, char := shimscanner.GetECMALineAndCharacterOfPosition(d.Raw.File(), d.Raw.Pos())
			fmt.Fprintf(w, "%s(%d,%d): ", relativePath(d.Raw.File().FileName(), cwd), line+1, char+1)
		}
	} else if d.FilePath != "" {
		fmt.Fprintf(w, "%s: ", relativePath(d.FilePath, cwd))
	}
	fmt.Fprintf(w, "%s TS%d: %s\n", cat.Name(), code, d.Message)
}

func writePretty(w io.Writer, d tscompile.Diagnostic, cwd string) {
	cat := CategoryError
	code := 0
	if d.Raw != nil {
		cat = Category(ast.Diagnostic_Category(d.Raw))
		code = d.Raw.Code()
	}

	if d.Raw != nil && d.Raw.File() != nil {
		file := d.Raw.File()
		line, char := shimscanner.GetECMALineAndCharacterOfPosition(file, d.Raw.Pos())
		fmt.Fprintf(w, "%s%s%s:%s%d%s:%s%d%s",
			colorCyan, relativePath(file.FileName(), cwd), colorReset,
			colorYellow, line+1, colorReset,
			colorYellow, char+1, colorReset)
		fmt.Fprint(w, " - ")
	} else if d.FilePath != "" {
		fmt.Fprintf(w, "%s%s%s - ", colorCyan, relativePath(d.FilePath, cwd), colorReset)
	}

	fmt.Fprintf(w, "%s%s%s %sTS%d:%s %s",
		categoryColor(cat), cat.Name(), colorReset,
		colorGrey, code, colorReset,
		d.Message)

	if d.Raw != nil && d.Raw.File() != nil && d.Raw.Len() > 0 {
		fmt.Fprint(w, "\n")
		writeCodeSnippet(w, d.Raw.File(), d.Raw.Pos(), d.Raw.Len(), categoryColor(cat))
		fmt.Fprint(w, "\n")
	}
}

func writeCodeSnippet(w io.Writer, file *ast.SourceFile, start int, length int, squiggleColor string) {
	firstLine, firstLineChar := shimscanner.GetECMALineAndCharacterOfPosition(file, start)
	lastLine, lastLineChar := shimscanner.GetECMALineAndCharacterOfPosition(file, start+length)
	if length == 0 {
		lastLineChar++
	}

	text := file.Text()
	lastLineOfFile := shimscanner.GetECMALineOfPosition(file, len(text))

	hasMoreThanFiveLines := lastLine-firstLine >= 4
	gutterWidth := len(strconv.Itoa(lastLine + 1))
	if hasMoreThanFiveLines && len("...") > gutterWidth {
		gutterWidth = len("...")
	}

	for i := firstLine; i <= lastLine; i++ {
		if hasMoreThanFiveLines && firstLine+1 < i && i < lastLine-1 {
			fmt.Fprintf(w, "%s%*s%s %s\n", colorGutter, gutterWidth, "...", colorReset, "")
			i = lastLine - 1
		}

		lineStart := shimscanner.GetECMAPositionOfLineAndCharacter(file, i, 0)
		var lineEnd int
		if i < lastLineOfFile {
			lineEnd = shimscanner.GetECMAPositionOfLineAndCharacter(file, i+1, 0)
		} else {
			lineEnd = len(text)
		}

		lineContent := strings.TrimRightFunc(text[lineStart:lineEnd], unicode.IsSpace)
		lineContent = strings.ReplaceAll(lineContent, "\t", " ")

		fmt.Fprintf(w, "%s%*d%s %s\n", colorGutter, gutterWidth, i+1, colorReset, lineContent)

		fmt.Fprintf(w, "%s%*s%s ", colorGutter, gutterWidth, "", colorReset)
		fmt.Fprint(w, squiggleColor)
		switch i {
		case firstLine:
			lastCharForLine := lastLineChar
			if i != lastLine {
				lastCharForLine = len(lineContent)
			}
			fmt.Fprint(w, strings.Repeat(" ", firstLineChar))
			squiggleLen := lastCharForLine - firstLineChar
			if squiggleLen < 1 {
				squiggleLen = 1
			}
			fmt.Fprint(w, strings.Repeat("~", squiggleLen))
		case lastLine:
			if lastLineChar > 0 {
				fmt.Fprint(w, strings.Repeat("~", lastLineChar))
			}
		default:
			fmt.Fprint(w, strings.Repeat("~", len(lineContent)))
		}
		fmt.Fprint(w, colorReset)
	}
}

// CountErrors returns the number of CategoryError diagnostics.
func CountErrors(diags []tscompile.Diagnostic) int {
	count := 0
	for _, d := range diags {
		if d.Raw == nil || Category(ast.Diagnostic_Category(d.Raw)) == CategoryError {
			count++
		}
	}
	return count
}

// LogPipelineError reports a bundler pipeline error (resolver failures,
// read failures, legacy-transform failures) to the error stream and lets
// the caller continue — the Watch Coordinator never treats a failed
// bundling as fatal (spec.md §4.11, §5).
func LogPipelineError(w io.Writer, err error) {
	fmt.Fprintf(w, "%sbundle error:%s %v\n", colorRed, colorReset, err)
}

func relativePath(absPath string, cwd string) string {
	if cwd == "" {
		return absPath
	}
	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}
	return rel
}
