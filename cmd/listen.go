package cmd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/jsphweid/melodex/chords"
	"github.com/jsphweid/melodex/keydetect"
	"github.com/jsphweid/melodex/model"
)

func init() {
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listens to a midi port",
	Long:  `Listens to a midi input port and suggests chords for whatever melody gets played.`,
	Run: func(cmd *cobra.Command, args []string) {
		listen()
	},
}

type heldNote struct {
	at  float64
	vel uint8
}

type capture struct {
	mu      sync.Mutex
	started map[uint8]heldNote
	notes   []model.NoteEvent
}

func (c *capture) noteStart(key, vel uint8, at float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started[key] = heldNote{at: at, vel: vel}
}

func (c *capture) noteEnd(key uint8, at float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	held, ok := c.started[key]
	if !ok || at <= held.at {
		return
	}
	delete(c.started, key)
	c.notes = append(c.notes, model.NoteEvent{
		MidiNumber: int(key),
		StartTime:  held.at,
		Duration:   at - held.at,
		Velocity:   int(held.vel),
	})
}

// snapshot copies the melody so suggestion reads consistent data while
// new notes keep arriving.
func (c *capture) snapshot() []model.NoteEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]model.NoteEvent, len(c.notes))
	copy(res, c.notes)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartTime < res[j].StartTime
	})
	return res
}

func suggestForCapture(c *capture) {
	melody := c.snapshot()
	if len(melody) == 0 {
		return
	}

	keyName := "C"
	if guess, ok := keydetect.FromNotes(melody); ok {
		keyName = guess.Name
	}
	progression, err := chords.Suggest(melody, keyName, 4, 120)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}
	fmt.Printf("key: %v\n", keyName)
	for _, ch := range progression {
		fmt.Printf("beat %4.1f: %v %v\n", ch.StartBeat, ch.Root, ch.Quality)
	}
}

func listen() {
	defer midi.CloseDriver()
	in, err := midi.InPort(0)
	if err != nil {
		fmt.Println("can't find a midi input port")
		return
	}

	c := &capture{started: make(map[uint8]heldNote)}

	// re-suggest shortly after the player pauses, not on every note
	debounced := debounce.New(500 * time.Millisecond)

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		at := float64(timestampms) / 1000
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			c.noteStart(key, vel, at)
		case msg.GetNoteEnd(&ch, &key):
			c.noteEnd(key, at)
			debounced(func() { suggestForCapture(c) })
		default:
			// ignore
		}
	})

	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	time.Sleep(time.Second * 5000) // lol
	stop()
}
