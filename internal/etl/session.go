package etl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/BartekS5/assetimport/internal/automap"
	"github.com/BartekS5/assetimport/internal/parser"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
)

// State is a step of an import session.
type State int

const (
	StateUploaded State = iota
	StateMapped
	StatePreviewed
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateUploaded:
		return "Uploaded"
	case StateMapped:
		return "Mapped"
	case StatePreviewed:
		return "Previewed"
	case StateCommitted:
		return "Committed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNoFile            = errors.New("no file uploaded")
	// ErrSuperseded means a newer upload, preview or commit replaced this one.
	ErrSuperseded = errors.New("superseded by a newer operation")
)

// Session walks one uploaded file through Uploaded -> Mapped -> Previewed -> Committed.
// It is safe for concurrent use; a new Upload, Preview, Commit or mapping edit
// cancels any operation still in flight and its result is discarded.
type Session struct {
	ID string

	mu        sync.Mutex
	processor *Processor
	policy    models.ErrorPolicy

	state       State
	table       *parser.Table
	fingerprint string
	mappedFor   string
	mapping     models.Mapping
	collisions  []automap.Collision
	preview     *models.PreviewReport
	report      *models.CommitReport

	gen    uint64
	cancel context.CancelFunc
}

func NewSession(p *Processor, policy models.ErrorPolicy) *Session {
	if policy == "" {
		policy = models.ErrorPolicySkipInvalidRows
	}
	return &Session{
		ID:        uuid.NewString(),
		processor: p,
		policy:    policy,
		mapping:   models.NewMapping(nil),
	}
}

// begin starts a new operation generation and cancels the previous one. Caller holds mu.
func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ctx, s.gen
}

// finish reports whether gen is still current and releases its context. Caller holds mu.
func (s *Session) finish(gen uint64) bool {
	if gen != s.gen {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func fingerprint(t *parser.Table) string {
	data, err := json.Marshal(t)
	if err != nil {
		// rows hold only JSON scalars
		panic(fmt.Sprintf("etl: fingerprint table: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Upload replaces the session's file. Mapping edits survive re-uploading the same content.
func (s *Session) Upload(t *parser.Table) {
	fp := fingerprint(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, gen := s.begin(context.Background())
	s.finish(gen)

	if fp != s.fingerprint {
		s.mapping = models.NewMapping(nil)
		s.collisions = nil
		s.mappedFor = ""
	}
	s.table = t
	s.fingerprint = fp
	s.preview = nil
	s.report = nil
	s.state = StateUploaded
	logger.Infof("Session %s: uploaded %d rows, %d columns", s.ID, len(t.Rows), len(t.Headers))
}

// Map moves to Mapped. The auto-mapper only runs for a file it has not seen.
func (s *Session) Map() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return ErrNoFile
	}
	if s.state != StateUploaded && s.state != StateMapped {
		return fmt.Errorf("%w: map from %s", ErrInvalidTransition, s.state)
	}

	if s.mappedFor != s.fingerprint {
		reg := s.processor.Transformer.Registry
		proposal := automap.Propose(s.table.Headers, reg.AllFields())
		s.mapping = models.NewMapping(proposal.Mapping)
		s.collisions = proposal.Collisions
		s.mappedFor = s.fingerprint
	}
	s.state = StateMapped

	if missing := MissingRequired(s.processor.Transformer.Registry, s.mapping); len(missing) > 0 {
		logger.Warnf("Session %s: required fields without a column: %v", s.ID, missing)
	}
	return nil
}

func (s *Session) edit(fn func(m *models.Mapping) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateMapped && s.state != StatePreviewed {
		return fmt.Errorf("%w: edit mapping in %s", ErrInvalidTransition, s.state)
	}
	m := s.mapping.Clone()
	if err := fn(&m); err != nil {
		return err
	}

	_, gen := s.begin(context.Background())
	s.finish(gen)

	s.mapping = m
	s.preview = nil
	s.state = StateMapped
	return nil
}

// SetMapping replaces the whole mapping, e.g. with a saved profile.
func (s *Session) SetMapping(m models.Mapping) error {
	return s.edit(func(cur *models.Mapping) error {
		*cur = m.Clone()
		return nil
	})
}

func (s *Session) Assign(header, path string) error {
	return s.edit(func(m *models.Mapping) error {
		if _, ok := s.processor.Transformer.Registry.Lookup(path); !ok {
			return fmt.Errorf("unknown field %q", path)
		}
		m.Assign(header, path)
		return nil
	})
}

func (s *Session) Unassign(header string) error {
	return s.edit(func(m *models.Mapping) error {
		m.Unassign(header)
		return nil
	})
}

func (s *Session) AddCustom(c models.CustomMapping) error {
	return s.edit(func(m *models.Mapping) error {
		return m.AddCustom(c)
	})
}

func (s *Session) RemoveCustom(header string) error {
	return s.edit(func(m *models.Mapping) error {
		m.RemoveCustom(header)
		return nil
	})
}

// Preview runs the transformer over the first rows and moves to Previewed.
func (s *Session) Preview(ctx context.Context) (models.PreviewReport, error) {
	s.mu.Lock()
	if s.state != StateMapped && s.state != StatePreviewed {
		s.mu.Unlock()
		return models.PreviewReport{}, fmt.Errorf("%w: preview from %s", ErrInvalidTransition, s.state)
	}
	ctx, gen := s.begin(ctx)
	rows := s.table.Rows
	headers := s.table.Headers
	mapping := s.mapping.Clone()
	s.mu.Unlock()

	report, err := s.processor.Preview(ctx, rows, mapping, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(gen) {
		return models.PreviewReport{}, ErrSuperseded
	}
	if err != nil {
		return models.PreviewReport{}, err
	}

	report.UnmappedHeaders = UnmappedHeaders(headers, mapping)
	report.MissingRequired = MissingRequired(s.processor.Transformer.Registry, mapping)
	s.preview = &report
	s.state = StatePreviewed
	return report, nil
}

// CanCommit applies the error policy to the current preview.
func (s *Session) CanCommit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canCommit()
}

func (s *Session) canCommit() error {
	if s.state != StatePreviewed || s.preview == nil {
		return fmt.Errorf("%w: commit from %s", ErrInvalidTransition, s.state)
	}
	return CheckPolicy(s.policy, s.preview.Outcomes)
}

// Commit imports every row, not just the preview sample, and moves to Committed.
func (s *Session) Commit(ctx context.Context) (models.CommitReport, error) {
	s.mu.Lock()
	if err := s.canCommit(); err != nil {
		s.mu.Unlock()
		return models.CommitReport{}, err
	}
	ctx, gen := s.begin(ctx)
	rows := s.table.Rows
	mapping := s.mapping.Clone()
	s.mu.Unlock()

	report, err := s.processor.Commit(ctx, rows, mapping, s.policy)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(gen) {
		return models.CommitReport{}, ErrSuperseded
	}
	if err != nil {
		return report, err
	}
	s.report = &report
	s.state = StateCommitted
	logger.Infof("Session %s: committed %d rows", s.ID, report.Total)
	return report, nil
}

// Back steps one state back without re-running the auto-mapper.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateMapped:
		s.state = StateUploaded
	case StatePreviewed:
		s.preview = nil
		s.state = StateMapped
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, s.state)
	}
	return nil
}

// Reset discards the file, mappings and cached results.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, gen := s.begin(context.Background())
	s.finish(gen)

	s.table = nil
	s.fingerprint = ""
	s.mappedFor = ""
	s.mapping = models.NewMapping(nil)
	s.collisions = nil
	s.preview = nil
	s.report = nil
	s.state = StateUploaded
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Mapping() models.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping.Clone()
}

func (s *Session) Collisions() []automap.Collision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]automap.Collision(nil), s.collisions...)
}

// Table returns the uploaded file, or nil.
func (s *Session) Table() *parser.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

func (s *Session) LastPreview() (models.PreviewReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview == nil {
		return models.PreviewReport{}, false
	}
	return *s.preview, true
}

func (s *Session) LastReport() (models.CommitReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return models.CommitReport{}, false
	}
	return *s.report, true
}
