package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFragmentText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "  plain   text ", expected: "plain text"},
		{input: "AT&amp;T", expected: "AT&T"},
		{input: `<span class="badge">TRX-001</span>`, expected: "TRX-001"},
		{input: "<div>\n\t<b>TRX</b>-<i>002</i>\n</div>", expected: "TRX-002"},
		{input: `<a href="/detail?id=1">  D002025001  </a>`, expected: "D002025001"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, FragmentText(row.input), row.input)
	}
}

func TestAnchorText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: `<a href="#">Edit</a>`, expected: "Edit"},
		{input: `<div class="btn-group"><a class="btn" href="/edit?appNo=1"><i class="fa fa-pen"></i> Edit</a><a href="#">Hapus</a></div>`, expected: "Edit"},
		{input: `<span>Lihat</span>`, expected: "Lihat"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, AnchorText(row.input), row.input)
	}
}
