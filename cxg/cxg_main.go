// cxg is a front end for exercising the Computachess II emulation: an SDL
// window showing the sensor chessboard and the LED matrix, keyboard input
// for the panel keys, mouse input for the board squares and queued audio
// for the speaker. The chess program itself is opaque mask ROM with no
// instruction interpreter here, so a scripted scan loop stands in for the
// firmware's port activity and drives the full I/O surface end to end.
package main

import (
	"flag"
	"image"
	"io/ioutil"
	"log"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/draw"

	"github.com/cxgboard/emu/board"
	"github.com/cxgboard/emu/cpchess2"
	"github.com/cxgboard/emu/dac"
)

var (
	romPath = flag.String("rom", "", "Path to the cpchess2 ROM image (16k, verified against the known dump)")
	record  = flag.String("record", "", "If set will record speaker output to this WAV file")
	scale   = flag.Int("scale", 48, "Pixel size of one board square")
	debug   = flag.Bool("debug", false, "If true will emit MCU port state once per second")
)

const (
	kSampleRate = 44100

	// One full mux walk per slot set, then repeat for the rest of the frame.
	kScanFiles = 8

	// Speaker toggle half period for key feedback, ~488Hz.
	kBeepHalfPeriod = cpchess2.Clock / (2 * 488)
)

type swtch struct {
	b bool
}

func (s *swtch) Input() bool {
	return s.b
}

// colors for the board rendering, ARGB as FillRect wants them.
const (
	kColorLight    = 0xFFF0D9B5
	kColorDark     = 0xFFB58863
	kColorWhite    = 0xFFFAFAFA
	kColorBlack    = 0xFF202020
	kColorSettling = 0xFFCC5544
)

var window *sdl.Window
var surface *sdl.Surface

func main() {
	flag.Parse()
	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	// The whole image is 16k so just read it in.
	rom, err := ioutil.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("Can't load rom: %v from path: %s", err, *romPath)
	}

	sdl.Main(func() {
		sq := *scale
		boardW, boardH := 8*sq, 8*sq
		// LED panel to the right of the board, 2 columns of 8.
		panelW := 2 * sq
		winW, winH := boardW+panelW, boardH

		var wg sync.WaitGroup
		wg.Add(1)
		var audio sdl.AudioDeviceID
		sdl.Do(func() {
			if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
				log.Fatalf("Can't init SDL: %v", err)
			}
			window, err = sdl.CreateWindow("Computachess II", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(winW), int32(winH), sdl.WINDOW_SHOWN)
			if err != nil {
				log.Fatalf("Can't create window: %v", err)
			}
			surface, err = window.GetSurface()
			if err != nil {
				log.Fatalf("Can't get window surface: %v", err)
			}
			audio, err = sdl.OpenAudioDevice("", false, &sdl.AudioSpec{
				Freq:     kSampleRate,
				Format:   sdl.AUDIO_S16SYS,
				Channels: 1,
				Samples:  1024,
			}, nil, 0)
			if err != nil {
				log.Fatalf("Can't open audio: %v", err)
			}
			sdl.PauseAudioDevice(audio, false)
			wg.Done()
		})
		wg.Wait()
		defer func() {
			sdl.Do(func() {
				sdl.CloseAudioDevice(audio)
				window.Destroy()
				sdl.Quit()
			})
		}()

		var rec *dac.WavRecorder
		if *record != "" {
			rec, err = dac.NewWavRecorder(*record, kSampleRate)
			if err != nil {
				log.Fatalf("Can't open recording: %v", err)
			}
			defer rec.Close()
		}

		// The ten panel keys.
		king, queen, rook := &swtch{}, &swtch{}, &swtch{}
		bishop, knight, pawn := &swtch{}, &swtch{}, &swtch{}
		takeBack, reversePlay := &swtch{}, &swtch{}
		sound, level := &swtch{}, &swtch{}
		keymap := map[sdl.Keycode]*swtch{
			sdl.K_1: king, sdl.K_2: queen, sdl.K_3: rook,
			sdl.K_4: bishop, sdl.K_5: knight, sdl.K_6: pawn,
			sdl.K_t: takeBack, sdl.K_r: reversePlay,
			sdl.K_s: sound, sdl.K_l: level,
		}

		ledRect := image.Rect(boardW, 0, boardW+panelW, boardH)
		m, err := cpchess2.Init(&cpchess2.MachineDef{
			Rom:  rom,
			King: king, Queen: queen, Rook: rook,
			Bishop: bishop, Knight: knight, Pawn: pawn,
			TakeBack: takeBack, ReversePlay: reversePlay,
			Sound: sound, Level: level,
			SampleRate: kSampleRate,
			FrameDone: func(i *image.NRGBA) {
				sdl.Do(func() {
					draw.NearestNeighbor.Scale(surface, ledRect, i, i.Bounds(), draw.Src, nil)
				})
			},
		})
		if err != nil {
			log.Fatalf("Can't init %s: %v", cpchess2.Name, err)
		}

		anyKey := func() bool {
			for _, s := range keymap {
				if s.b {
					return true
				}
			}
			return false
		}

		beepPhase := uint64(0)
		beepOn := false
		running := true
		for running {
			sdl.Do(func() {
				for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
					switch ev := e.(type) {
					case *sdl.QuitEvent:
						running = false
					case *sdl.KeyboardEvent:
						down := ev.Type == sdl.KEYDOWN
						if s, ok := keymap[ev.Keysym.Sym]; ok {
							s.b = down
							continue
						}
						// New Game is wired straight to the MCU reset pin.
						if ev.Keysym.Sym == sdl.K_n {
							m.SetReset(down)
						}
					case *sdl.MouseButtonEvent:
						if ev.Type != sdl.MOUSEBUTTONDOWN {
							continue
						}
						x, y := int(ev.X), int(ev.Y)
						if x < boardW && y < boardH {
							// Rank 7 is drawn at the top.
							m.Board().Toggle(x/sq, 7-y/sq)
						}
					}
				}
			})

			// Stand-in for one frame of firmware activity: walk the mux
			// through every scan column, reading the panel and board at
			// each stop, and toggle the speaker for key feedback.
			frameCycles := uint64(cpchess2.Clock / cpchess2.FrameRate)
			slice := frameCycles / kScanFiles
			for i := 0; i < kScanFiles; i++ {
				sel := uint8(1) << uint(i)
				// The R port pins are active low.
				m.MCU().WriteR(2, ^sel&0x0F)
				m.MCU().WriteR(3, ^(sel>>4)&0x0F)
				_ = m.MCU().ReadD()

				control := uint16(0x0000) // Both led columns on.
				if anyKey() {
					beepPhase += slice
					if beepPhase >= kBeepHalfPeriod {
						beepPhase = 0
						beepOn = !beepOn
					}
				} else {
					beepOn = false
				}
				if beepOn {
					control |= 0x0010
				}
				m.MCU().WriteD(control)
				m.Tick(slice)
			}

			// Drain the speaker into the audio queue (and the recording).
			samples := m.DAC().Samples()
			if rec != nil {
				if err := rec.Write(samples); err != nil {
					log.Fatalf("Recording failed: %v", err)
				}
			}
			buf := make([]byte, len(samples)*2)
			for i, s := range samples {
				buf[i*2] = byte(s)
				buf[i*2+1] = byte(s >> 8)
			}
			sdl.Do(func() {
				if err := sdl.QueueAudio(audio, buf); err != nil {
					log.Printf("Can't queue audio: %v", err)
				}
				drawBoard(m, sq)
				window.UpdateSurface()
				sdl.Delay(1000 / cpchess2.FrameRate)
			})

			if *debug && m.Cycles()%cpchess2.Clock < frameCycles {
				log.Printf("%s", m.MCU().Debug())
			}
		}
	})
}

// drawBoard fills the 8x8 board area from the stable sensor state, with
// settling squares flagged so a mid-bounce piece is visible.
func drawBoard(m *cpchess2.Machine, sq int) {
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			x, y := int32(f*sq), int32((7-r)*sq)
			bg := uint32(kColorDark)
			if (f+r)%2 == 1 {
				bg = kColorLight
			}
			surface.FillRect(&sdl.Rect{X: x, Y: y, W: int32(sq), H: int32(sq)}, bg)
			if m.Board().Settling(f, r) {
				inset := int32(sq / 8)
				surface.FillRect(&sdl.Rect{X: x + inset, Y: y + inset, W: int32(sq) - 2*inset, H: int32(sq) - 2*inset}, kColorSettling)
			}
			p := m.Board().PieceAt(f, r)
			if p == board.NO_PIECE {
				continue
			}
			c := uint32(kColorWhite)
			if p >= board.BLACK_PAWN {
				c = kColorBlack
			}
			inset := int32(sq / 4)
			surface.FillRect(&sdl.Rect{X: x + inset, Y: y + inset, W: int32(sq) - 2*inset, H: int32(sq) - 2*inset}, c)
		}
	}
}
