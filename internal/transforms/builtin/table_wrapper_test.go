package builtin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableWrapper(t *testing.T) {
	doc := parse(t, page(`<table><tr><td>a</td></tr></table><div class="table-wrapper"><table><tr><td>b</td></tr></table></div>`))
	run(t, doc, TableWrapper{})

	out := serialize(t, doc)
	assert.Equal(t, 2, strings.Count(out, `<div class="table-wrapper">`), "already wrapped tables are left alone")
	assert.Contains(t, out, `<div class="table-wrapper"><table><tbody><tr><td>a</td></tr></tbody></table></div>`)
}
