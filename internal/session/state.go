package session

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"

	"pallet-cubing-backend/config"
)

const (
	keyLoggedIn        = "isLoggedIn"
	keyTerminalID      = "terminalId"
	keyReceiverID      = "receiverId"
	keyResumeScreen    = "resumeScreen"
	keyWorkflowScreen  = "workflowScreen"
	resumeDataPrefix   = "resumeData_"
	keyCurrentTrailer  = "currentTrailer"
	keyCurrentPro      = "currentPro"
	keyPalletIndex     = "currentPalletIndex"
	keyExpectedPallets = "expectedPallets"
	keyFreightType     = "freightType"
	keyTemp1           = "temp1"
	keyTemp2           = "temp2"
)

// workContextKeys are wiped by ClearResumeState. The workflow screen is not
// one of them: it is owned by the controller and only Logout removes it.
var workContextKeys = []string{
	keyResumeScreen,
	keyCurrentTrailer,
	keyCurrentPro,
	keyPalletIndex,
	keyExpectedPallets,
	keyFreightType,
	keyTemp1,
	keyTemp2,
}

// WorkContext is a point-in-time copy of the active trailer/PRO context.
type WorkContext struct {
	Trailer         string `json:"trailer,omitempty"`
	Pro             string `json:"pro,omitempty"`
	ExpectedPallets int    `json:"expected_pallets"`
	PalletIndex     int    `json:"pallet_index"`
	FreightType     string `json:"freight_type,omitempty"`
	Temp1           string `json:"temp1,omitempty"`
	Temp2           string `json:"temp2,omitempty"`
	HasTemp2        bool   `json:"-"`
}

// State is the operator session: identity, work context and the resume
// pointer. Writes go straight to the backend. Backend failures are logged and
// reads fall back to zero values, so callers never see an error.
type State struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps an already opened backend.
func New(backend Backend) *State {
	return &State{backend: backend}
}

// Open builds the backend named in cfg. db is only used by the sql backend.
func Open(cfg config.SessionConfig, db *gorm.DB) (*State, error) {
	switch cfg.Backend {
	case "", "sql":
		if db == nil {
			return nil, fmt.Errorf("sql session backend needs a database")
		}
		return New(NewSQLBackend(db)), nil
	case "badger":
		b, err := OpenBadgerBackend(cfg.Path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case "memory":
		return New(NewMemoryBackend()), nil
	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Backend)
	}
}

// Close releases the backend.
func (s *State) Close() error {
	return s.backend.Close()
}

func (s *State) getString(key string) string {
	v, ok, err := s.backend.Get(key)
	if err != nil {
		log.Printf("session: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (s *State) getInt(key string) int {
	v := s.getString(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("session: key %s holds non-integer %q", key, v)
		return 0
	}
	return n
}

func (s *State) set(key, value string) {
	if err := s.backend.Set(key, value); err != nil {
		log.Printf("session: %v", err)
	}
}

func (s *State) remove(keys ...string) {
	if err := s.backend.Delete(keys...); err != nil {
		log.Printf("session: %v", err)
	}
}

// Login records the operator identity. IDs must already be validated.
func (s *State) Login(terminalID, receiverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(keyTerminalID, terminalID)
	s.set(keyReceiverID, receiverID)
	s.set(keyLoggedIn, "true")
	log.Printf("Operator logged in: terminal %s, receiver %s", terminalID, receiverID)
}

func (s *State) IsLoggedIn() bool {
	return s.getString(keyLoggedIn) == "true"
}

func (s *State) TerminalID() string { return s.getString(keyTerminalID) }
func (s *State) ReceiverID() string { return s.getString(keyReceiverID) }

// Logout wipes everything: identity, work context and resume pointer.
func (s *State) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Clear(); err != nil {
		log.Printf("session: %v", err)
	}
	log.Println("Operator logged out")
}

func (s *State) SetCurrentTrailer(trailer string) { s.set(keyCurrentTrailer, trailer) }
func (s *State) CurrentTrailer() string           { return s.getString(keyCurrentTrailer) }

func (s *State) SetCurrentPro(pro string) { s.set(keyCurrentPro, pro) }
func (s *State) CurrentPro() string       { return s.getString(keyCurrentPro) }

func (s *State) SetExpectedPallets(n int) { s.set(keyExpectedPallets, strconv.Itoa(n)) }
func (s *State) ExpectedPallets() int     { return s.getInt(keyExpectedPallets) }

func (s *State) SetCurrentPalletIndex(i int) { s.set(keyPalletIndex, strconv.Itoa(i)) }
func (s *State) CurrentPalletIndex() int     { return s.getInt(keyPalletIndex) }

func (s *State) SetFreightType(ft string) { s.set(keyFreightType, ft) }
func (s *State) FreightType() string      { return s.getString(keyFreightType) }

func (s *State) SetTemp1(t string) { s.set(keyTemp1, t) }
func (s *State) Temp1() string     { return s.getString(keyTemp1) }

// SetTemp2 stores the second temperature; blank removes it.
func (s *State) SetTemp2(t string) {
	if strings.TrimSpace(t) == "" {
		s.remove(keyTemp2)
		return
	}
	s.set(keyTemp2, t)
}

// Temp2 returns the second temperature and whether one is stored.
func (s *State) Temp2() (string, bool) {
	v, ok, err := s.backend.Get(keyTemp2)
	if err != nil {
		log.Printf("session: %v", err)
		return "", false
	}
	return v, ok
}

// IncrementPalletIndex advances the pallet index and returns the new value.
func (s *State) IncrementPalletIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.getInt(keyPalletIndex) + 1
	s.set(keyPalletIndex, strconv.Itoa(next))
	return next
}

// HasMorePallets reports whether the current index is still within the PRO.
func (s *State) HasMorePallets() bool {
	return s.CurrentPalletIndex() <= s.ExpectedPallets()
}

// SetWorkflowScreen records the screen the operator is on. Unlike the resume
// pointer it always follows the latest transition.
func (s *State) SetWorkflowScreen(screen string) { s.set(keyWorkflowScreen, screen) }

// WorkflowScreen returns the screen set by the last transition, if any.
func (s *State) WorkflowScreen() (string, bool) {
	v := s.getString(keyWorkflowScreen)
	return v, v != ""
}

// SaveResumeState points the resume pointer at screen and merges payload into
// the stored payload. Keys from earlier calls are kept until ClearResumeState.
func (s *State) SaveResumeState(screen string, payload map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(keyResumeScreen, screen)
	for k, v := range payload {
		s.set(resumeDataPrefix+k, v)
	}
}

// ResumeScreen returns the stored resume screen, if any.
func (s *State) ResumeScreen() (string, bool) {
	v, ok, err := s.backend.Get(keyResumeScreen)
	if err != nil {
		log.Printf("session: %v", err)
		return "", false
	}
	return v, ok && v != ""
}

// ResumeState returns the accumulated resume payload.
func (s *State) ResumeState() map[string]string {
	raw, err := s.backend.Scan(resumeDataPrefix)
	if err != nil {
		log.Printf("session: %v", err)
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[strings.TrimPrefix(k, resumeDataPrefix)] = v
	}
	return out
}

// ClearResumeState drops the resume pointer and the whole work context
// (trailer, PRO, counters, freight, temperatures). Identity is kept.
func (s *State) ClearResumeState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append([]string(nil), workContextKeys...)
	payload, err := s.backend.Scan(resumeDataPrefix)
	if err != nil {
		log.Printf("session: %v", err)
	}
	for k := range payload {
		keys = append(keys, k)
	}
	s.remove(keys...)
}

// ResetPro clears the PRO-scoped fields and sets the index back to 1 while
// keeping the current trailer.
func (s *State) ResetPro() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(keyCurrentPro, keyExpectedPallets, keyFreightType, keyTemp1, keyTemp2)
	s.set(keyPalletIndex, "1")
}

// Context returns a copy of the current work context.
func (s *State) Context() WorkContext {
	temp2, hasTemp2 := s.Temp2()
	return WorkContext{
		Trailer:         s.CurrentTrailer(),
		Pro:             s.CurrentPro(),
		ExpectedPallets: s.ExpectedPallets(),
		PalletIndex:     s.CurrentPalletIndex(),
		FreightType:     s.FreightType(),
		Temp1:           s.Temp1(),
		Temp2:           temp2,
		HasTemp2:        hasTemp2,
	}
}

// UserInfo is the one-line identity banner.
func (s *State) UserInfo() string {
	if !s.IsLoggedIn() {
		return "Not logged in"
	}
	return fmt.Sprintf("Terminal: %s | Receiver: %s", s.TerminalID(), s.ReceiverID())
}
