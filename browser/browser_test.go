package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeJSString(t *testing.T) {
	assert.Equal(t, `input[type=\'radio\'][value=\'5\']`, escapeJSString(`input[type='radio'][value='5']`))
	assert.Equal(t, `a\\b\"c\nd`, escapeJSString("a\\b\"c\nd"))
}
