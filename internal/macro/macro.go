// Package macro provides the reference macro library: the external
// collaborator that maps an action selection to an emitted byte sequence.
// Modeled on a prompt-assembly compiler, generalized from assembling
// behavior text into assembling fixed byte payloads selected by utility
// rather than token budget.
package macro

import (
	"github.com/corticaldb/substrate/internal/constants"
	"github.com/corticaldb/substrate/internal/rng"
)

// Macro is one registered action: a fixed byte payload plus the fast/slow
// utility trackers the core updates after every emission.
type Macro struct {
	Payload []byte

	UFast float64
	USlow float64

	UseCount     uint64
	LastUsedTick uint64
}

// Library holds up to MacroCap macros, indexed 0..n-1.
type Library struct {
	macros []Macro
}

// NewLibrary creates a Library with cap slots, all initially empty
// (zero-length payload, zero utility).
func NewLibrary(cap int) *Library {
	return &Library{macros: make([]Macro, cap)}
}

// NewDefaultLibrary seeds a Library with single-byte literal macros at
// indices 0..255 (macro i emits byte i), matching the byte alphabet the
// detector bank reads — a minimal but functional out-of-the-box action set.
// Slots at index 256 and above stay empty.
func NewDefaultLibrary(cap int) *Library {
	lib := NewLibrary(cap)
	for i := 0; i < cap && i < 256; i++ {
		lib.macros[i] = Macro{Payload: []byte{byte(i)}}
	}
	return lib
}

// Len returns the number of macro slots.
func (l *Library) Len() int { return len(l.macros) }

// Set installs a macro's payload at index i, truncating to
// constants.MacroPayloadMax bytes.
func (l *Library) Set(i int, payload []byte) {
	if i < 0 || i >= len(l.macros) {
		return
	}
	if len(payload) > constants.MacroPayloadMax {
		payload = payload[:constants.MacroPayloadMax]
	}
	l.macros[i].Payload = payload
}

// Select performs epsilon-greedy macro selection: with probability epsilon,
// pick uniformly at random; otherwise pick the macro maximizing
// gammaSlow*USlow + (1-gammaSlow)*UFast. Returns the selected index and its
// payload.
func Select(l *Library, epsilon float64, rnd *rng.Source) (int, []byte) {
	n := l.Len()
	if n == 0 {
		return -1, nil
	}
	if rnd.Bernoulli(epsilon) {
		i := rnd.Intn(n)
		return i, l.macros[i].Payload
	}

	best := 0
	bestScore := score(l.macros[0])
	for i := 1; i < n; i++ {
		if s := score(l.macros[i]); s > bestScore {
			bestScore = s
			best = i
		}
	}
	return best, l.macros[best].Payload
}

func score(m Macro) float64 {
	return constants.GammaSlow*m.USlow + (1-constants.GammaSlow)*m.UFast
}

// Reward updates macro i's utility trackers as exponential moving averages
// of reward, plus its use-count bookkeeping.
func Reward(l *Library, i int, reward float64, tick uint64) {
	if i < 0 || i >= len(l.macros) {
		return
	}
	m := &l.macros[i]
	m.UFast = 0.95*m.UFast + 0.05*reward
	m.USlow = 0.999*m.USlow + 0.001*reward
	m.UseCount++
	m.LastUsedTick = tick
}
