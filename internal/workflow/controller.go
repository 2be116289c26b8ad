package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"pallet-cubing-backend/internal/export"
	"pallet-cubing-backend/internal/model"
	"pallet-cubing-backend/internal/parse"
	"pallet-cubing-backend/internal/session"
	"pallet-cubing-backend/internal/store"
	"pallet-cubing-backend/internal/validate"
)

// Exporter runs trailer exports in the background.
type Exporter interface {
	Submit(trailer, terminal string) (export.Job, error)
	Job(id string) (export.Job, bool)
	LatestForTrailer(trailer string) (export.Job, bool)
}

// Options tunes a Controller.
type Options struct {
	SaveGuardTTL       time.Duration
	SummaryVisiblePros int
}

// Controller drives the cubing workflow. It owns no state of its own beyond
// the save guard: the work context lives in the session and pallet rows in
// the store.
type Controller struct {
	session  *session.State
	store    store.Store
	exports  Exporter
	inflight *cache.Cache
	guardTTL time.Duration
	visible  int
	now      func() time.Time

	// mu serialises transitions.
	mu sync.Mutex
}

// NewController wires a controller.
func NewController(s *session.State, st store.Store, exports Exporter, opts Options) *Controller {
	if opts.SaveGuardTTL <= 0 {
		opts.SaveGuardTTL = 30 * time.Second
	}
	if opts.SummaryVisiblePros <= 0 {
		opts.SummaryVisiblePros = 4
	}
	return &Controller{
		session:  s,
		store:    st,
		exports:  exports,
		inflight: cache.New(opts.SaveGuardTTL, 2*opts.SaveGuardTTL),
		guardTTL: opts.SaveGuardTTL,
		visible:  opts.SummaryVisiblePros,
		now:      time.Now,
	}
}

func (c *Controller) requireLogin() error {
	if !c.session.IsLoggedIn() {
		return ErrNotLoggedIn
	}
	return nil
}

func (c *Controller) view(screen Screen) View {
	v := View{
		Screen:   screen,
		UserInfo: c.session.UserInfo(),
		Fields:   c.session.Context(),
	}
	if screen == ScreenPalletDetail {
		v.Progress = &Progress{Pallet: v.Fields.PalletIndex, Of: v.Fields.ExpectedPallets}
	}
	return v
}

// current returns the screen the last transition left the operator on.
func (c *Controller) current() Screen {
	if raw, ok := c.session.WorkflowScreen(); ok {
		screen, _ := ParseScreen(raw)
		return screen
	}
	if c.session.CurrentTrailer() != "" {
		return ScreenProHeader
	}
	return ScreenTrailer
}

func (c *Controller) moveTo(screen Screen) {
	c.session.SetWorkflowScreen(string(screen))
}

// allow rejects op unless the operator is on one of screens.
func (c *Controller) allow(op string, screens ...Screen) error {
	from := c.current()
	for _, s := range screens {
		if s == from {
			return nil
		}
	}
	return &InvalidTransitionError{Op: op, From: from}
}

// allowHeaderEntry admits actions that replace the active PRO. From the
// pallet screen they only go through for the same PRO or while the active
// PRO has no saved pallets, so a partial PRO is never left behind.
func (c *Controller) allowHeaderEntry(ctx context.Context, op, trailer, pro string) error {
	from := c.current()
	switch from {
	case ScreenProHeader, ScreenSummary:
		return nil
	case ScreenPalletDetail:
		active := c.session.CurrentPro()
		if active == "" || active == pro {
			return nil
		}
		saved, err := c.store.CountByTrailerAndPro(ctx, trailer, active)
		if err != nil {
			return &StoreError{Op: "check active PRO", Err: err}
		}
		if saved == 0 {
			return nil
		}
	}
	return &InvalidTransitionError{Op: op, From: from}
}

// Landing resolves where the UI should start: login when signed out, the
// resume screen when one is stored, the trailer screen otherwise. Fields come
// from the session, falling back to the resume payload. Landing only reads.
func (c *Controller) Landing(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.landing(ctx)
}

func (c *Controller) landing(ctx context.Context) View {
	if !c.session.IsLoggedIn() {
		return View{Screen: ScreenLogin, UserInfo: c.session.UserInfo()}
	}

	raw, ok := c.session.ResumeScreen()
	if !ok {
		return c.view(ScreenTrailer)
	}
	screen, known := ParseScreen(raw)
	if !known {
		log.Printf("Unknown resume screen %q, landing on %s", raw, screen)
	}

	payload := c.session.ResumeState()
	v := c.view(screen)
	v.Fields = prefill(v.Fields, payload)

	switch screen {
	case ScreenLogin:
		v.Screen = ScreenTrailer
	case ScreenProHeader:
		if v.Fields.Trailer == "" {
			v.Screen = ScreenTrailer
		}
	case ScreenPalletDetail:
		// Lost writes surface as a step back, not a broken pallet screen.
		if v.Fields.Trailer == "" || v.Fields.Pro == "" || v.Fields.ExpectedPallets < 1 ||
			v.Fields.PalletIndex < 1 || v.Fields.PalletIndex > v.Fields.ExpectedPallets {
			v.Screen = ScreenProHeader
			v.Progress = nil
		}
	case ScreenSummary:
		sv, err := c.summary(ctx, payload["trailer"], false, false)
		if err != nil {
			log.Printf("Cannot resume summary: %v", err)
			v.Screen = ScreenProHeader
			return v
		}
		return sv
	}
	return v
}

func prefill(wc session.WorkContext, payload map[string]string) session.WorkContext {
	if wc.Trailer == "" {
		wc.Trailer = payload["trailer"]
	}
	if wc.Pro == "" {
		wc.Pro = payload["pro"]
	}
	if wc.ExpectedPallets == 0 {
		wc.ExpectedPallets = validate.ParseIntOr(payload["expectedPallets"], 0)
	}
	if wc.FreightType == "" {
		wc.FreightType = payload["freightType"]
	}
	if wc.Temp1 == "" {
		wc.Temp1 = payload["temp1"]
	}
	// The payload accumulates keys; an old temp2 only applies to a dual PRO.
	if !wc.HasTemp2 && wc.FreightType == string(model.FreightDual) {
		if t2, ok := payload["temp2"]; ok {
			wc.Temp2 = t2
			wc.HasTemp2 = true
		}
	}
	return wc
}

// Login records the operator identity.
func (c *Controller) Login(ctx context.Context, terminalID, receiverID string) (View, error) {
	if !validate.IsValidTerminalID(terminalID) {
		return View{}, &ValidationError{Field: "terminal_id", Message: validate.TerminalIDMessage}
	}
	if !validate.IsValidReceiverID(receiverID) {
		return View{}, &ValidationError{Field: "receiver_id", Message: validate.ReceiverIDMessage}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Login(strings.TrimSpace(terminalID), strings.TrimSpace(receiverID))
	v := c.landing(ctx)
	if _, ok := c.session.WorkflowScreen(); !ok {
		c.moveTo(v.Screen)
	}
	return v, nil
}

// EnterTrailer starts work on a trailer and moves to the PRO header.
func (c *Controller) EnterTrailer(ctx context.Context, trailer string) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	if !validate.IsValidTrailerNumber(trailer) {
		return View{}, &ValidationError{Field: "trailer", Message: validate.TrailerMessage}
	}
	trailer = strings.TrimSpace(trailer)

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.session.CurrentTrailer()
	if c.current() != ScreenTrailer {
		if err := c.allowHeaderEntry(ctx, "enter_trailer", current, ""); err != nil {
			return View{}, err
		}
	}

	if current != "" && current != trailer {
		c.session.ResetPro()
	}
	c.session.SetCurrentTrailer(trailer)
	c.session.SaveResumeState(string(ScreenTrailer), map[string]string{"trailer": trailer})
	c.moveTo(ScreenProHeader)
	log.Printf("Trailer %s entered", trailer)
	return c.view(ScreenProHeader), nil
}

// CancelTrailer deletes every record of the current trailer and resets the
// work context.
func (c *Controller) CancelTrailer(ctx context.Context, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer := c.session.CurrentTrailer()
	if trailer != "" {
		if !confirm {
			records, err := c.store.RecordsByTrailer(ctx, trailer)
			if err != nil {
				return View{}, &StoreError{Op: "count trailer records", Err: err}
			}
			return View{}, &ConfirmationRequiredError{Action: "cancel_trailer", Affected: len(records)}
		}
		if _, err := c.store.DeleteByTrailer(ctx, trailer); err != nil {
			return View{}, &StoreError{Op: "delete trailer records", Err: err}
		}
	}
	c.session.ClearResumeState()
	c.moveTo(ScreenTrailer)
	log.Printf("Trailer %s cancelled", trailer)
	return c.view(ScreenTrailer), nil
}

// SignOut deletes every record in the store and clears the session.
func (c *Controller) SignOut(ctx context.Context, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	if !confirm {
		return View{}, &ConfirmationRequiredError{Action: "sign_out"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.DeleteAll(ctx); err != nil {
		return View{}, &StoreError{Op: "delete all records", Err: err}
	}
	c.session.Logout()
	return View{Screen: ScreenLogin, UserInfo: c.session.UserInfo()}, nil
}

func (c *Controller) requireTrailer() (string, error) {
	trailer := c.session.CurrentTrailer()
	if trailer == "" {
		return "", &MissingContextError{What: "trailer", Recovery: ScreenTrailer}
	}
	return trailer, nil
}

// StartPro checks the PRO against the store. A PRO without saved pallets
// starts at pallet 1; one with saved pallets returns a DuplicateProError and
// the operator picks ContinuePro or RestartPro.
func (c *Controller) StartPro(ctx context.Context, in ProHeaderInput) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	h, err := in.validate()
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer, err := c.requireTrailer()
	if err != nil {
		return View{}, err
	}
	if err := c.allowHeaderEntry(ctx, "start_pro", trailer, h.pro); err != nil {
		return View{}, err
	}

	existing, err := c.store.CountByTrailerAndPro(ctx, trailer, h.pro)
	if err != nil {
		return View{}, &StoreError{Op: "check PRO", Err: err}
	}
	if existing > 0 {
		return View{}, &DuplicateProError{
			Trailer:     trailer,
			Pro:         h.pro,
			Existing:    existing,
			CanContinue: h.expected >= existing,
		}
	}
	return c.begin(h, 1), nil
}

// begin writes the header into the session and opens the pallet screen.
func (c *Controller) begin(h proHeader, index int) View {
	c.session.SetCurrentPro(h.pro)
	c.session.SetExpectedPallets(h.expected)
	c.session.SetFreightType(string(h.freight))
	c.session.SetTemp1(h.temp1)
	if h.temp2 != nil {
		c.session.SetTemp2(*h.temp2)
	} else {
		c.session.SetTemp2("")
	}
	c.session.SetCurrentPalletIndex(index)
	c.session.SaveResumeState(string(ScreenProHeader), h.payload())
	c.moveTo(ScreenPalletDetail)
	log.Printf("PRO %s started at pallet %d of %d", h.pro, index, h.expected)
	return c.view(ScreenPalletDetail)
}

// ContinuePro resumes a PRO that already has saved pallets. The new header is
// written onto the saved pallets and numbering continues after the highest
// saved sequence.
func (c *Controller) ContinuePro(ctx context.Context, in ProHeaderInput) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	h, err := in.validate()
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer, err := c.requireTrailer()
	if err != nil {
		return View{}, err
	}
	if err := c.allowHeaderEntry(ctx, "continue_pro", trailer, h.pro); err != nil {
		return View{}, err
	}

	existing, err := c.store.CountByTrailerAndPro(ctx, trailer, h.pro)
	if err != nil {
		return View{}, &StoreError{Op: "check PRO", Err: err}
	}
	if existing == 0 {
		return c.begin(h, 1), nil
	}
	if h.expected < existing {
		return View{}, &ExpectedPalletsError{Pro: h.pro, Existing: existing, Entered: h.expected}
	}

	if _, err := c.store.UpdateHeaderByTrailerAndPro(ctx, store.HeaderUpdate{
		Trailer:         trailer,
		Pro:             h.pro,
		ExpectedPallets: h.expected,
		FreightType:     string(h.freight),
		Temp1:           h.temp1,
		Temp2:           h.temp2,
	}); err != nil {
		return View{}, &StoreError{Op: "update PRO header", Err: err}
	}

	maxSeq, err := c.store.MaxSequenceByTrailerAndPro(ctx, trailer, h.pro)
	if err != nil {
		return View{}, &StoreError{Op: "read last pallet number", Err: err}
	}

	v := c.begin(h, maxSeq+1)
	if maxSeq+1 > h.expected {
		// Every expected pallet is already saved.
		c.session.ClearResumeState()
		return c.summary(ctx, trailer, false, true)
	}
	return v, nil
}

// RestartPro deletes the PRO's saved pallets and starts it again at pallet 1.
func (c *Controller) RestartPro(ctx context.Context, in ProHeaderInput, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	h, err := in.validate()
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer, err := c.requireTrailer()
	if err != nil {
		return View{}, err
	}
	if err := c.allowHeaderEntry(ctx, "restart_pro", trailer, h.pro); err != nil {
		return View{}, err
	}

	if !confirm {
		existing, err := c.store.CountByTrailerAndPro(ctx, trailer, h.pro)
		if err != nil {
			return View{}, &StoreError{Op: "check PRO", Err: err}
		}
		return View{}, &ConfirmationRequiredError{Action: "restart_pro", Affected: existing}
	}

	if _, err := c.store.DeleteByTrailerAndPro(ctx, trailer, h.pro); err != nil {
		return View{}, &StoreError{Op: "delete PRO records", Err: err}
	}
	return c.begin(h, 1), nil
}

// DiscardPro deletes a PRO's saved pallets and stays on the PRO header for a
// fresh entry. It is the way out when a continue is rejected.
func (c *Controller) DiscardPro(ctx context.Context, pro string, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	if !validate.IsValidProNumber(pro) {
		return View{}, &ValidationError{Field: "pro", Message: validate.ProNumberMessage}
	}
	pro = strings.TrimSpace(pro)

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer, err := c.requireTrailer()
	if err != nil {
		return View{}, err
	}
	if err := c.allowHeaderEntry(ctx, "discard_pro", trailer, pro); err != nil {
		return View{}, err
	}

	if !confirm {
		existing, err := c.store.CountByTrailerAndPro(ctx, trailer, pro)
		if err != nil {
			return View{}, &StoreError{Op: "check PRO", Err: err}
		}
		return View{}, &ConfirmationRequiredError{Action: "discard_pro", Affected: existing}
	}

	if _, err := c.store.DeleteByTrailerAndPro(ctx, trailer, pro); err != nil {
		return View{}, &StoreError{Op: "delete PRO records", Err: err}
	}
	if c.session.CurrentPro() == pro {
		c.session.ResetPro()
	}
	c.session.SaveResumeState(string(ScreenProHeader), nil)
	c.moveTo(ScreenProHeader)
	return c.view(ScreenProHeader), nil
}

// Progress returns the pallet screen for the active PRO.
func (c *Controller) Progress(ctx context.Context) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allow("progress", ScreenPalletDetail); err != nil {
		return View{}, err
	}
	v := c.view(ScreenPalletDetail)
	if v.Fields.Pro == "" || v.Fields.ExpectedPallets < 1 || v.Fields.PalletIndex < 1 ||
		v.Fields.PalletIndex > v.Fields.ExpectedPallets {
		return View{}, &MissingContextError{What: "active PRO", Recovery: ScreenProHeader}
	}
	return v, nil
}

func guardKey(trailer, pro string, seq int) string {
	return trailer + "|" + pro + "|" + strconv.Itoa(seq)
}

// SavePallet inserts the current pallet. At most one insert happens per
// pallet number: a save that arrives while the same pallet is being written
// gets ErrSaveInProgress, and one that arrives after it was written gets a
// StaleSequenceError when it carries the pallet number it was shown for.
// On failure nothing advances and the same input can be retried.
func (c *Controller) SavePallet(ctx context.Context, in PalletInput) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}
	d, err := in.validate()
	if err != nil {
		return View{}, err
	}

	wc := c.session.Context()
	if wc.Trailer == "" || wc.Pro == "" || wc.ExpectedPallets < 1 || wc.PalletIndex < 1 {
		return View{}, &MissingContextError{What: "active PRO", Recovery: ScreenProHeader}
	}

	shown := wc.PalletIndex
	key := guardKey(wc.Trailer, wc.Pro, shown)
	if err := c.inflight.Add(key, struct{}{}, c.guardTTL); err != nil {
		return View{}, ErrSaveInProgress
	}
	defer c.inflight.Delete(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-read under the lock; a save may have completed while we waited.
	wc = c.session.Context()
	seq := wc.PalletIndex
	if in.Sequence != 0 && in.Sequence != seq {
		return View{}, &StaleSequenceError{Submitted: in.Sequence, Current: seq}
	}
	if guardKey(wc.Trailer, wc.Pro, seq) != key {
		return View{}, &StaleSequenceError{Submitted: shown, Current: seq}
	}
	if err := c.allow("save_pallet", ScreenPalletDetail); err != nil {
		return View{}, err
	}
	if !c.session.HasMorePallets() {
		return View{}, &MissingContextError{What: "active PRO", Recovery: ScreenProHeader}
	}

	parsed, err := parse.ParsePro(wc.Pro)
	if err != nil {
		return View{}, &MissingContextError{What: "valid PRO", Recovery: ScreenProHeader}
	}

	rec := &model.PalletRecord{
		Timestamp:         c.now().Format(model.TimestampLayout),
		Terminal:          c.session.TerminalID(),
		Receiver:          c.session.ReceiverID(),
		TrailerNumber:     wc.Trailer,
		ProNumberIncoming: parsed.Incoming,
		ProPrefix:         parsed.Prefix,
		ProNumberErb:      parsed.Erb,
		FreightType:       wc.FreightType,
		Temp1:             wc.Temp1,
		ExpectedPallets:   wc.ExpectedPallets,
		PalletSequence:    seq,
		PalletHeight:      d.height,
		Condition:         d.condition,
		OsdReason:         d.reason,
		OsdQuantity:       d.quantity,
		OsdQuantityType:   d.quantityType,
		Status:            model.StatusNew,
	}
	if wc.HasTemp2 {
		t2 := wc.Temp2
		rec.Temp2 = &t2
	}

	if _, err := c.store.Insert(ctx, rec); err != nil {
		return View{}, &StoreError{Op: "save pallet", Err: err}
	}
	log.Printf("Saved pallet %d of %d for PRO %s on trailer %s", seq, wc.ExpectedPallets, wc.Pro, wc.Trailer)

	c.session.IncrementPalletIndex()
	if !c.session.HasMorePallets() {
		c.session.ClearResumeState()
		c.moveTo(ScreenSummary)
		log.Printf("PRO %s complete on trailer %s", wc.Pro, wc.Trailer)
		v := View{Screen: ScreenSummary, UserInfo: c.session.UserInfo(), Saved: rec}
		v.Fields.Trailer = wc.Trailer
		return v, nil
	}

	c.session.SaveResumeState(string(ScreenPalletDetail), nil)
	v := c.view(ScreenPalletDetail)
	v.Saved = rec
	return v, nil
}

// AbandonPro deletes the active PRO's saved pallets and returns to the PRO header.
func (c *Controller) AbandonPro(ctx context.Context, confirm bool) (View, error) {
	return c.leavePallets(ctx, "abandon_pro", confirm)
}

// BackFromPalletDetail leaves the pallet screen. Partial pallets of the PRO
// are deleted so they can never reach an export.
func (c *Controller) BackFromPalletDetail(ctx context.Context, confirm bool) (View, error) {
	return c.leavePallets(ctx, "back_to_pro_header", confirm)
}

func (c *Controller) leavePallets(ctx context.Context, action string, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allow(action, ScreenPalletDetail); err != nil {
		return View{}, err
	}
	trailer, err := c.requireTrailer()
	if err != nil {
		return View{}, err
	}
	pro := c.session.CurrentPro()

	if pro != "" {
		existing, err := c.store.CountByTrailerAndPro(ctx, trailer, pro)
		if err != nil {
			return View{}, &StoreError{Op: "check PRO", Err: err}
		}
		if existing > 0 && !confirm {
			return View{}, &ConfirmationRequiredError{Action: action, Affected: existing}
		}
		if existing > 0 {
			if _, err := c.store.DeleteByTrailerAndPro(ctx, trailer, pro); err != nil {
				return View{}, &StoreError{Op: "delete PRO records", Err: err}
			}
		}
	}

	c.session.SetCurrentPalletIndex(1)
	c.session.SaveResumeState(string(ScreenProHeader), nil)
	c.moveTo(ScreenProHeader)
	log.Printf("Left pallet entry for PRO %s on trailer %s (%s)", pro, trailer, action)
	return c.view(ScreenProHeader), nil
}

// resolveTrailer prefers the explicit trailer, then the session, then the
// resume payload.
func (c *Controller) resolveTrailer(explicit string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if t := c.session.CurrentTrailer(); t != "" {
		return t
	}
	return c.session.ResumeState()["trailer"]
}

// Summary builds the completion screen of a trailer and makes it the resume
// screen. all lists every PRO instead of the first few.
func (c *Controller) Summary(ctx context.Context, trailer string, all bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allow("summary", ScreenTrailer, ScreenProHeader, ScreenSummary); err != nil {
		return View{}, err
	}
	return c.summary(ctx, trailer, all, true)
}

// summary builds the summary view. persist makes it the current and resume
// screen; without it nothing in the session is written.
func (c *Controller) summary(ctx context.Context, trailer string, all, persist bool) (View, error) {
	trailer = c.resolveTrailer(trailer)
	if trailer == "" {
		return View{}, &MissingContextError{What: "trailer", Recovery: ScreenProHeader}
	}

	rows, err := c.store.SummaryByTrailer(ctx, trailer)
	if err != nil {
		return View{}, &StoreError{Op: "load trailer summary", Err: err}
	}
	if len(rows) == 0 {
		return View{}, &MissingContextError{What: "pallet records for trailer " + trailer, Recovery: ScreenProHeader}
	}

	sv := &SummaryView{Trailer: trailer, TotalPros: len(rows)}
	for _, r := range rows {
		sv.TotalPallets += r.PalletCount
	}
	sv.Pros = rows
	if !all && len(rows) > c.visible {
		sv.Pros = rows[:c.visible]
		sv.Truncated = true
	}
	if c.exports != nil {
		if job, ok := c.exports.LatestForTrailer(trailer); ok {
			sv.LastExport = &job
			sv.HasExported = job.Status == export.JobDone
		}
	}

	if persist {
		c.session.SaveResumeState(string(ScreenSummary), map[string]string{"trailer": trailer})
		c.moveTo(ScreenSummary)
	}

	v := c.view(ScreenSummary)
	v.Fields.Trailer = trailer
	v.Summary = sv
	return v, nil
}

// AddAnotherPro keeps the trailer and opens an empty PRO header.
func (c *Controller) AddAnotherPro(ctx context.Context, trailer string) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allow("add_another_pro", ScreenSummary, ScreenProHeader); err != nil {
		return View{}, err
	}
	trailer = c.resolveTrailer(trailer)
	if trailer == "" {
		return View{}, &MissingContextError{What: "trailer", Recovery: ScreenTrailer}
	}

	c.session.SetCurrentTrailer(trailer)
	c.session.ResetPro()
	c.session.SaveResumeState(string(ScreenProHeader), map[string]string{"trailer": trailer})
	c.moveTo(ScreenProHeader)
	return c.view(ScreenProHeader), nil
}

// Export queues a CSV export of the trailer. It reads records only.
func (c *Controller) Export(ctx context.Context, trailer string) (export.Job, error) {
	if err := c.requireLogin(); err != nil {
		return export.Job{}, err
	}
	if c.exports == nil {
		return export.Job{}, errors.New("export is not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.allow("export", ScreenTrailer, ScreenProHeader, ScreenSummary); err != nil {
		return export.Job{}, err
	}
	trailer = c.resolveTrailer(trailer)
	if trailer == "" {
		return export.Job{}, &MissingContextError{What: "trailer", Recovery: ScreenProHeader}
	}

	rows, err := c.store.SummaryByTrailer(ctx, trailer)
	if err != nil {
		return export.Job{}, &StoreError{Op: "load trailer summary", Err: err}
	}
	if len(rows) == 0 {
		return export.Job{}, ErrNothingToExport
	}

	job, err := c.exports.Submit(trailer, c.session.TerminalID())
	if errors.Is(err, export.ErrBusy) {
		return export.Job{}, ErrExportInProgress
	}
	if err != nil {
		return export.Job{}, fmt.Errorf("failed to queue export: %w", err)
	}
	log.Printf("Export %s queued for trailer %s", job.ID, trailer)
	return job, nil
}

// ExportStatus looks up an export job.
func (c *Controller) ExportStatus(id string) (export.Job, bool) {
	if c.exports == nil {
		return export.Job{}, false
	}
	return c.exports.Job(id)
}

// DeleteTrailerAndStartNew deletes the trailer's records, resets the work
// context and returns to the trailer screen. The login is kept.
func (c *Controller) DeleteTrailerAndStartNew(ctx context.Context, trailer string, confirm bool) (View, error) {
	if err := c.requireLogin(); err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trailer = c.resolveTrailer(trailer)
	if trailer == "" {
		return View{}, &MissingContextError{What: "trailer", Recovery: ScreenTrailer}
	}

	if c.exports != nil {
		if job, ok := c.exports.LatestForTrailer(trailer); ok && !job.Finished() {
			return View{}, ErrExportInProgress
		}
	}

	if !confirm {
		records, err := c.store.RecordsByTrailer(ctx, trailer)
		if err != nil {
			return View{}, &StoreError{Op: "count trailer records", Err: err}
		}
		return View{}, &ConfirmationRequiredError{Action: "delete_trailer", Affected: len(records)}
	}

	if _, err := c.store.DeleteByTrailer(ctx, trailer); err != nil {
		return View{}, &StoreError{Op: "delete trailer records", Err: err}
	}
	c.session.ClearResumeState()
	c.moveTo(ScreenTrailer)
	log.Printf("Trailer %s deleted", trailer)
	return c.view(ScreenTrailer), nil
}

// AcceptScan validates a scanner payload as a PRO number. It changes nothing.
func (c *Controller) AcceptScan(extras map[string]string) (string, parse.Scan, error) {
	scan, err := parse.ParseScan(extras)
	if err != nil {
		return "", scan, &ValidationError{Field: "scan", Message: "No barcode data received"}
	}
	if !validate.IsValidProNumber(scan.Data) {
		return "", scan, &ValidationError{Field: "pro", Message: validate.ProNumberMessage}
	}
	return strings.TrimSpace(scan.Data), scan, nil
}
