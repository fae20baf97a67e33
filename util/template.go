package util

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateValues holds the substitutions for result file name templates.
type TemplateValues struct {
	ClassName  string
	MethodName string
	Parameter  any
	Sorted     string
}

var placeholderPattern = regexp.MustCompile(`(?i)\{(classname|methodname|parameter|sorted)\}`)

// ExpandTemplate substitutes the {ClassName}, {MethodName}, {Parameter} and
// {Sorted} placeholders in template. Placeholder matching is case-insensitive
// and a nil parameter renders as the empty string. Unknown placeholders are
// left untouched.
func ExpandTemplate(template string, values TemplateValues) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		switch strings.ToLower(match[1 : len(match)-1]) {
		case "classname":
			return SanitizeFileName(values.ClassName)
		case "methodname":
			return SanitizeFileName(values.MethodName)
		case "parameter":
			return SanitizeFileName(FormatParameter(values.Parameter))
		case "sorted":
			return SanitizeFileName(values.Sorted)
		}
		return match
	})
}

// FormatParameter renders a benchmark parameter, nil as the empty string.
func FormatParameter(parameter any) string {
	if parameter == nil {
		return ""
	}
	return fmt.Sprint(parameter)
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName replaces characters that cannot appear in a file name.
func SanitizeFileName(name string) string {
	return unsafeFileChars.Replace(name)
}
