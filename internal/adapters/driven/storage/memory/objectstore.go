package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
//
// A transaction works on a private copy of the state and swaps it in on
// commit. Only one transaction is open at a time; Begin blocks until the
// previous one ends.
type ObjectStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *objectState

	// FailOn makes the named write operation fail with FailErr. For tests.
	FailOn  string
	FailErr error
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{state: newObjectState()}
}

type objectState struct {
	objects    map[int64]domain.PreservationObject
	byLocation map[string]int64
	events     []domain.Event
	properties []domain.SignificantProperty
	sessions   map[int64]domain.IngestSession
	agents     []domain.Agent
	nextID     int64
}

func newObjectState() *objectState {
	return &objectState{
		objects:    make(map[int64]domain.PreservationObject),
		byLocation: make(map[string]int64),
		sessions:   make(map[int64]domain.IngestSession),
	}
}

func (st *objectState) clone() *objectState {
	return &objectState{
		objects:    maps.Clone(st.objects),
		byLocation: maps.Clone(st.byLocation),
		events:     slices.Clone(st.events),
		properties: slices.Clone(st.properties),
		sessions:   maps.Clone(st.sessions),
		agents:     slices.Clone(st.agents),
		nextID:     st.nextID,
	}
}

func (st *objectState) id() int64 {
	st.nextID++
	return st.nextID
}

// snapshot returns the committed state for reading.
func (s *ObjectStore) snapshot() *objectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// GetObject retrieves an object by ID.
func (s *ObjectStore) GetObject(_ context.Context, objectID int64) (*domain.PreservationObject, error) {
	return s.snapshot().getObject(objectID)
}

// GetObjectByLocation retrieves an object by content location.
func (s *ObjectStore) GetObjectByLocation(_ context.Context, location string) (*domain.PreservationObject, error) {
	return s.snapshot().getObjectByLocation(location)
}

// ListEvents returns an object's events ordered by timestamp, then event ID.
func (s *ObjectStore) ListEvents(_ context.Context, objectID int64) ([]domain.Event, error) {
	return s.snapshot().listEvents(objectID), nil
}

// ListProperties returns an object's significant properties in insertion order.
func (s *ObjectStore) ListProperties(_ context.Context, objectID int64) ([]domain.SignificantProperty, error) {
	return s.snapshot().listProperties(objectID), nil
}

// ListRelated returns objects linked to objectID in either direction.
func (s *ObjectStore) ListRelated(_ context.Context, objectID int64) ([]domain.PreservationObject, error) {
	return s.snapshot().listRelated(objectID), nil
}

// GetSession retrieves an ingest session by ID.
func (s *ObjectStore) GetSession(_ context.Context, sessionID int64) (*domain.IngestSession, error) {
	return s.snapshot().getSession(sessionID)
}

// SchemaVersion returns the version this build writes.
func (s *ObjectStore) SchemaVersion(_ context.Context) (string, error) {
	return domain.SchemaVersion, nil
}

// ListDue returns file objects last checked before cutoff, stalest first,
// starting strictly after the cursor.
func (s *ObjectStore) ListDue(
	_ context.Context,
	cutoff time.Time,
	after driven.DueCursor,
	limit int,
) ([]domain.DueObject, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := s.fail("ListDue"); err != nil {
		return nil, err
	}

	st := s.snapshot()
	lastChecked := make(map[int64]time.Time)
	for _, ev := range st.events {
		if ev.Type != domain.EventIngestion && ev.Type != domain.EventFixityCheck {
			continue
		}
		if ev.Timestamp.After(lastChecked[ev.ObjectID]) {
			lastChecked[ev.ObjectID] = ev.Timestamp
		}
	}

	var due []domain.DueObject
	for id, at := range lastChecked {
		obj := st.objects[id]
		if !obj.IsFile() || !at.Before(cutoff) {
			continue
		}
		if at.Before(after.LastChecked) || (at.Equal(after.LastChecked) && id <= after.ObjectID) {
			continue
		}
		due = append(due, domain.DueObject{Object: copyObject(obj), LastChecked: at})
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].LastChecked.Equal(due[j].LastChecked) {
			return due[i].LastChecked.Before(due[j].LastChecked)
		}
		return due[i].Object.ObjectID < due[j].Object.ObjectID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Begin starts a unit of work.
func (s *ObjectStore) Begin(_ context.Context) (driven.ObjectTx, error) {
	if err := s.fail("Begin"); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	return &objectTx{store: s, state: s.snapshot().clone()}, nil
}

func (s *ObjectStore) fail(op string) error {
	if s.FailOn == op {
		return s.FailErr
	}
	return nil
}

// objectTx implements driven.ObjectTx on a private copy of the state.
type objectTx struct {
	store *ObjectStore
	state *objectState
	done  bool
}

var _ driven.ObjectTx = (*objectTx)(nil)

var errTxDone = errors.New("transaction already committed or rolled back")

func (t *objectTx) check(op string) error {
	if t.done {
		return errTxDone
	}
	return t.store.fail(op)
}

func (t *objectTx) GetObject(_ context.Context, objectID int64) (*domain.PreservationObject, error) {
	return t.state.getObject(objectID)
}

func (t *objectTx) GetObjectByLocation(_ context.Context, location string) (*domain.PreservationObject, error) {
	return t.state.getObjectByLocation(location)
}

func (t *objectTx) ListEvents(_ context.Context, objectID int64) ([]domain.Event, error) {
	return t.state.listEvents(objectID), nil
}

func (t *objectTx) ListProperties(_ context.Context, objectID int64) ([]domain.SignificantProperty, error) {
	return t.state.listProperties(objectID), nil
}

func (t *objectTx) ListRelated(_ context.Context, objectID int64) ([]domain.PreservationObject, error) {
	return t.state.listRelated(objectID), nil
}

func (t *objectTx) GetSession(_ context.Context, sessionID int64) (*domain.IngestSession, error) {
	return t.state.getSession(sessionID)
}

func (t *objectTx) CreateObject(_ context.Context, obj *domain.PreservationObject) error {
	if err := t.check("CreateObject"); err != nil {
		return err
	}
	if obj == nil || !obj.Category.IsValid() {
		return domain.ErrInvalidInput
	}
	if obj.ContentLocation != "" {
		if _, taken := t.state.byLocation[obj.ContentLocation]; taken {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLocation, obj.ContentLocation)
		}
	}

	obj.ObjectID = t.state.id()
	t.state.objects[obj.ObjectID] = copyObject(*obj)
	if obj.ContentLocation != "" {
		t.state.byLocation[obj.ContentLocation] = obj.ObjectID
	}
	return nil
}

func (t *objectTx) UpdateObject(_ context.Context, obj *domain.PreservationObject) error {
	if err := t.check("UpdateObject"); err != nil {
		return err
	}
	if obj == nil {
		return domain.ErrInvalidInput
	}
	existing, ok := t.state.objects[obj.ObjectID]
	if !ok {
		return domain.ErrNotFound
	}

	// Identity, category, location and session are fixed at creation.
	updated := copyObject(*obj)
	updated.IdentifierType = existing.IdentifierType
	updated.Identifier = existing.Identifier
	updated.Category = existing.Category
	updated.ContentLocation = existing.ContentLocation
	updated.SessionID = existing.SessionID
	t.state.objects[obj.ObjectID] = updated
	return nil
}

func (t *objectTx) AppendEvent(_ context.Context, event *domain.Event) error {
	if err := t.check("AppendEvent"); err != nil {
		return err
	}
	if event == nil {
		return domain.ErrInvalidInput
	}
	if _, ok := t.state.objects[event.ObjectID]; !ok {
		return domain.ErrNotFound
	}

	event.EventID = t.state.id()
	ev := *event
	ev.Timestamp = ev.Timestamp.UTC()
	t.state.events = append(t.state.events, ev)
	return nil
}

func (t *objectTx) AddProperty(_ context.Context, prop *domain.SignificantProperty) error {
	if err := t.check("AddProperty"); err != nil {
		return err
	}
	if prop == nil {
		return domain.ErrInvalidInput
	}
	if _, ok := t.state.objects[prop.ObjectID]; !ok {
		return domain.ErrNotFound
	}

	prop.PropertyID = t.state.id()
	t.state.properties = append(t.state.properties, *prop)
	return nil
}

func (t *objectTx) CreateSession(_ context.Context, session *domain.IngestSession) error {
	if err := t.check("CreateSession"); err != nil {
		return err
	}
	if session == nil {
		return domain.ErrInvalidInput
	}

	session.SessionID = t.state.id()
	t.state.sessions[session.SessionID] = *session
	return nil
}

func (t *objectTx) TouchSession(_ context.Context, sessionID int64, endTime time.Time) error {
	if err := t.check("TouchSession"); err != nil {
		return err
	}
	session, ok := t.state.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	end := endTime.UTC()
	session.EndTime = &end
	t.state.sessions[sessionID] = session
	return nil
}

func (t *objectTx) EnsureAgent(_ context.Context, agent *domain.Agent) (int64, error) {
	if err := t.check("EnsureAgent"); err != nil {
		return 0, err
	}
	if agent == nil || agent.Name == "" {
		return 0, domain.ErrInvalidInput
	}

	for _, a := range t.state.agents {
		if a.Name == agent.Name && a.Version == agent.Version {
			agent.AgentID = a.AgentID
			return a.AgentID, nil
		}
	}
	agent.AgentID = t.state.id()
	t.state.agents = append(t.state.agents, *agent)
	return agent.AgentID, nil
}

func (t *objectTx) Commit() error {
	if t.done {
		return errTxDone
	}
	if err := t.store.fail("Commit"); err != nil {
		return err
	}

	t.store.mu.Lock()
	t.store.state = t.state
	t.store.mu.Unlock()

	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *objectTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

// ==================== State Reads ====================

func (st *objectState) getObject(objectID int64) (*domain.PreservationObject, error) {
	obj, ok := st.objects[objectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	obj = copyObject(obj)
	return &obj, nil
}

func (st *objectState) getObjectByLocation(location string) (*domain.PreservationObject, error) {
	id, ok := st.byLocation[location]
	if !ok || location == "" {
		return nil, domain.ErrNotFound
	}
	return st.getObject(id)
}

func (st *objectState) listEvents(objectID int64) []domain.Event {
	var events []domain.Event
	for _, ev := range st.events {
		if ev.ObjectID == objectID {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].EventID < events[j].EventID
	})
	return events
}

func (st *objectState) listProperties(objectID int64) []domain.SignificantProperty {
	var props []domain.SignificantProperty
	for _, p := range st.properties {
		if p.ObjectID == objectID {
			props = append(props, p)
		}
	}
	return props
}

func (st *objectState) listRelated(objectID int64) []domain.PreservationObject {
	var target int64
	if self, ok := st.objects[objectID]; ok && self.Relationship != nil {
		target = self.Relationship.RelatedObjectID
	}

	ids := make([]int64, 0)
	for id, obj := range st.objects {
		if id == objectID {
			continue
		}
		if id == target || (obj.Relationship != nil && obj.Relationship.RelatedObjectID == objectID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	related := make([]domain.PreservationObject, 0, len(ids))
	for _, id := range ids {
		related = append(related, copyObject(st.objects[id]))
	}
	return related
}

func (st *objectState) getSession(sessionID int64) (*domain.IngestSession, error) {
	session, ok := st.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// copyObject detaches the pointer fields so stored state cannot be
// mutated through a returned object.
func copyObject(obj domain.PreservationObject) domain.PreservationObject {
	if obj.SizeBytes != nil {
		v := *obj.SizeBytes
		obj.SizeBytes = &v
	}
	if obj.SessionID != nil {
		v := *obj.SessionID
		obj.SessionID = &v
	}
	if obj.Relationship != nil {
		r := *obj.Relationship
		obj.Relationship = &r
	}
	return obj
}
