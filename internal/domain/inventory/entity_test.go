package inventory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNoteNumber(t *testing.T) {
	ingress := &StockNote{ID: 7, Type: NoteTypeIngress}
	assert.True(t, strings.HasPrefix(ingress.GenerateNoteNumber(), "ING-"))
	assert.True(t, strings.HasSuffix(ingress.GenerateNoteNumber(), "-00007"))

	egress := &StockNote{ID: 12, Type: NoteTypeEgress}
	assert.True(t, strings.HasPrefix(egress.GenerateNoteNumber(), "EGR-"))
}

func TestDelta(t *testing.T) {
	line := StockNoteLine{ProductID: 1, Quantity: 10}

	ingress := &StockNote{Type: NoteTypeIngress}
	assert.Equal(t, 10, ingress.Delta(line))

	egress := &StockNote{Type: NoteTypeEgress}
	assert.Equal(t, -10, egress.Delta(line))
}
