package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandTemplate(t *testing.T) {
	values := TemplateValues{
		ClassName:  "StringVsBuilder",
		MethodName: "Concat",
		Parameter:  12,
		Sorted:     "Ascending",
	}

	assert.Equal(t,
		"Raw-StringVsBuilder-Concat-12-Ascending.png",
		ExpandTemplate("Raw-{ClassName}-{MethodName}-{Parameter}-{Sorted}.png", values))
	assert.Equal(t,
		"RAW-StringVsBuilder.csv",
		ExpandTemplate("RAW-{classname}.csv", values))
	assert.Equal(t,
		"x-Concat-{Unknown}",
		ExpandTemplate("x-{METHODNAME}-{Unknown}", values))
}

func TestExpandTemplateNilParameter(t *testing.T) {
	got := ExpandTemplate("Raw-{ClassName}-{Parameter}.png", TemplateValues{ClassName: "A"})
	assert.Equal(t, "Raw-A-.png", got)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFileName("a/b:c"))
	assert.Equal(t, "1.5", FormatParameter(1.5))
	assert.Equal(t, "", FormatParameter(nil))
}
