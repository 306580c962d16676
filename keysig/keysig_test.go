package keysig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMajorKeys(t *testing.T) {
	assert := assert.New(t)

	c, err := Parse("C")
	assert.NoError(err)
	assert.Equal(c.Root, 0)
	assert.Equal(c.Minor, false)
	assert.Equal(c.Flats, false)

	fs, err := Parse("F#")
	assert.NoError(err)
	assert.Equal(fs.Root, 6)
	assert.Equal(fs.Flats, false)

	bb, err := Parse("Bb major")
	assert.NoError(err)
	assert.Equal(bb.Root, 10)
	assert.Equal(bb.Flats, true)
}

func TestParseMinorKeys(t *testing.T) {
	assert := assert.New(t)

	am, err := Parse("Am")
	assert.NoError(err)
	assert.Equal(am.Root, 9)
	assert.Equal(am.Minor, true)
	assert.Equal(am.Flats, false)

	ds, err := Parse("D# minor")
	assert.NoError(err)
	assert.Equal(ds.Root, 3)
	assert.Equal(ds.Minor, true)
	// relative major is F#, a sharp key
	assert.Equal(ds.Flats, false)

	dm, err := Parse("Dm")
	assert.NoError(err)
	assert.Equal(dm.Root, 2)
	// relative major is F, a flat key
	assert.Equal(dm.Flats, true)
}

func TestParseRejectsUnknownNames(t *testing.T) {
	assert := assert.New(t)
	for _, name := range []string{"", "H", "C##", "notakey"} {
		_, err := Parse(name)
		assert.Error(err)
	}
}

func TestSpellMidiUsesSignatureAccidentals(t *testing.T) {
	assert := assert.New(t)

	c, _ := Parse("C")
	assert.Equal(c.SpellMidi(60), "C4")
	assert.Equal(c.SpellMidi(70), "A#4")

	f, _ := Parse("F")
	assert.Equal(f.SpellMidi(70), "Bb4")
	assert.Equal(f.SpellMidi(61), "Db4")
}

func TestScalePitchClasses(t *testing.T) {
	assert := assert.New(t)

	c, _ := Parse("C")
	assert.Equal(c.ScalePitchClasses(), []int{0, 2, 4, 5, 7, 9, 11})

	am, _ := Parse("Am")
	assert.Equal(am.ScalePitchClasses(), []int{9, 11, 0, 2, 4, 5, 7})
}

func TestDegreeOf(t *testing.T) {
	assert := assert.New(t)
	c, _ := Parse("C")

	degree, ok := c.DegreeOf(7)
	assert.True(ok)
	assert.Equal(degree, 4)

	_, ok = c.DegreeOf(6)
	assert.False(ok)

	degree, ok = c.DegreeOfMidi(64)
	assert.True(ok)
	assert.Equal(degree, 2)
}
