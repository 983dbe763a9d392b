package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
)

func TestSuggest(t *testing.T) {
	candidates := []string{"shop.Order", "shop.OrderLine", "shop.Item", "billing.Invoice"}

	assert.Equal(t, []string{"shop.Order"}, Suggest("shop.Ordr", candidates))
	assert.Equal(t, "shop.Order", Suggest("order", candidates)[0])
	assert.Empty(t, Suggest("zzzzzzzz", candidates))
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "Name", "Type", "Required")
	table.AddRow("id", "uuid", "yes")
	table.AddRow("description", "string?")
	table.Render()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "Name         Type     Required", lines[0])
	assert.Contains(t, lines[1], "─")
	assert.Equal(t, "id           uuid     yes", lines[2])
	assert.Equal(t, "description  string?", lines[3])
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("x")
	table.Render()
	assert.Empty(t, buf.String())
}

func TestWriteErrorList(t *testing.T) {
	var buf bytes.Buffer
	el := scanerrors.ErrorList{
		scanerrors.NewCyclicSupertype("shop.A", []string{"shop.A", "shop.B", "shop.A"}),
		scanerrors.NewUnsupportedWrapperShape("shop.A.items", "vendor.Box<string>"),
	}
	WriteErrorList(&buf, el, true)

	out := buf.String()
	assert.Contains(t, out, "shop.A")
	assert.Contains(t, out, "1 error(s), 1 warning(s)")
}

func TestWriteWarnings(t *testing.T) {
	var buf bytes.Buffer
	WriteWarnings(&buf, []model.Warning{
		{Code: "WRP300", Node: "shop.A.items", Message: "rendered opaque"},
		{Code: "RTE400", Message: "overloads dropped"},
	}, true)

	assert.Equal(t,
		"warning [WRP300] shop.A.items: rendered opaque\nwarning [RTE400] overloads dropped\n",
		buf.String())
}

func TestUnknownRootError(t *testing.T) {
	msg := UnknownRootError("shop.Ordr", []string{"shop.Order"}, true)
	assert.Contains(t, msg, `unknown root type "shop.Ordr"`)
	assert.Contains(t, msg, "Did you mean: shop.Order?")
}

func TestFormatSuccess(t *testing.T) {
	assert.Equal(t, "✓ done", FormatSuccess("done", true))
}
