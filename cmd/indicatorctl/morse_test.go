package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"indicator-go/x/morse"
)

func TestRender(t *testing.T) {
	u := 10 * time.Millisecond
	units := morse.Encoder{Unit: u}.Translate("et e")
	assert.Equal(t, "#___###_______#", render(units, u))
}
