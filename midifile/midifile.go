package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/melodex/model"
)

const ticksPerQuarter = 960

// ImportResult is a parsed melody plus the file's first tempo
// meta-event (120 when absent).
type ImportResult struct {
	Notes []model.NoteEvent
	BPM   float64
}

func readSMF(path string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}

	return res, nil
}

// Import reads an SMF file into note events by pairing note-on/off
// messages across all tracks. Malformed files propagate a parse error
// with no partial result.
func Import(path string) (ImportResult, error) {
	s, err := readSMF(path)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{BPM: 120}
	tempoSeen := false

	type pending struct {
		startSec float64
		velocity uint8
	}

	for _, events := range s.Tracks {
		var absTicks int64
		pressed := make(map[uint8]pending)
		for _, event := range events {
			absTicks += int64(event.Delta)
			absSec := float64(s.TimeAt(absTicks)) / 1e6

			var bpm float64
			var channel, key, velocity uint8
			switch {
			case event.Message.GetMetaTempo(&bpm):
				if !tempoSeen {
					res.BPM = bpm
					tempoSeen = true
				}
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				pressed[key] = pending{startSec: absSec, velocity: velocity}
			case event.Message.GetNoteEnd(&channel, &key):
				p, ok := pressed[key]
				if !ok {
					continue
				}
				delete(pressed, key)
				if absSec <= p.startSec {
					continue
				}
				res.Notes = append(res.Notes, model.NoteEvent{
					MidiNumber: int(key),
					StartTime:  p.startSec,
					Duration:   absSec - p.startSec,
					Velocity:   int(p.velocity),
				})
			}
		}
	}

	sort.SliceStable(res.Notes, func(i, j int) bool {
		return res.Notes[i].StartTime < res.Notes[j].StartTime
	})
	return res, nil
}

type tickEvent struct {
	tick  uint32
	isOff bool
	msg   midi.Message
}

// Export writes the melody plus any named extra voices as one track
// per voice, with tempo and time-signature meta events up front. At
// equal ticks note-offs sort before note-ons so retriggered pitches
// survive round-tripping.
func Export(w io.Writer, melody []model.NoteEvent, voices []model.HarmonyVoice, bpm float64, beatsPerMeasure int) error {
	if bpm <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", bpm)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	all := append([]model.HarmonyVoice{{DisplayName: "Melody", Notes: melody}}, voices...)
	for i, voice := range all {
		channel := uint8(i % 16)
		var tr smf.Track
		if i == 0 {
			tr.Add(0, smf.MetaTempo(bpm))
			tr.Add(0, smf.MetaMeter(uint8(beatsPerMeasure), 4))
		}
		tr.Add(0, smf.MetaTrackSequenceName(voice.DisplayName))
		tr.Add(0, midi.ProgramChange(channel, 0))

		ticksPerSecond := bpm / 60 * ticksPerQuarter
		var events []tickEvent
		for _, n := range voice.Notes {
			on := uint32(n.StartTime * ticksPerSecond)
			off := uint32(n.EndTime() * ticksPerSecond)
			if off <= on {
				off = on + 1
			}
			vel := uint8(n.Velocity)
			if vel == 0 {
				vel = 64
			}
			events = append(events, tickEvent{tick: on, msg: midi.NoteOn(channel, uint8(n.MidiNumber), vel)})
			events = append(events, tickEvent{tick: off, isOff: true, msg: midi.NoteOff(channel, uint8(n.MidiNumber))})
		}
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return events[a].isOff && !events[b].isOff
		})

		var prev uint32
		for _, evt := range events {
			tr.Add(evt.tick-prev, evt.msg)
			prev = evt.tick
		}
		tr.Close(0)
		s.Add(tr)
	}

	_, err := s.WriteTo(w)
	if err != nil {
		return errors.New("Error writing midi file... " + err.Error())
	}
	return nil
}

// ExportFile is Export to a newly created file at path.
func ExportFile(path string, melody []model.NoteEvent, voices []model.HarmonyVoice, bpm float64, beatsPerMeasure int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("Error creating midi file... " + err.Error())
	}
	defer f.Close()
	return Export(f, melody, voices, bpm, beatsPerMeasure)
}
