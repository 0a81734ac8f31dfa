// Package repotest provides in-memory implementations of every store
// interface, sharing one call log so tests can assert fanout order and inject
// failures per operation.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
)

// Recorder logs operations as "store.Method" and returns injected failures.
type Recorder struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{failures: map[string]error{}}
}

// FailOn makes every later call of op fail with a store-unavailable error wrapping err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

// Calls returns the operations recorded so far.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the call log but keeps injected failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(store, method string) error {
	op := store + "." + method
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	if err, ok := r.failures[op]; ok {
		return errors.NewStoreUnavailableError(store, "injected failure in "+op, err)
	}
	return nil
}

// Stores bundles one fake per store over a shared Recorder.
type Stores struct {
	*Recorder
	Sensors   *SensorStore
	Documents *DocumentStore
	Data      *DataStore
	Cache     *Cache
	Metrics   *MetricsStore
	Search    *SearchStore
}

func NewStores() *Stores {
	rec := NewRecorder()
	return &Stores{
		Recorder:  rec,
		Sensors:   &SensorStore{rec: rec, byID: map[int64]*models.SensorRecord{}},
		Documents: &DocumentStore{rec: rec, byID: map[int64]*models.Sensor{}},
		Data:      &DataStore{rec: rec, rows: map[int64]map[int64]models.Reading{}},
		Cache:     &Cache{rec: rec, latest: map[int64]models.Reading{}},
		Metrics:   &MetricsStore{rec: rec, temps: map[int64][]float64{}, types: map[string]map[int64]bool{}},
		Search:    &SearchStore{rec: rec},
	}
}

// SensorStore fakes the relational identity store.
type SensorStore struct {
	rec    *Recorder
	mu     sync.Mutex
	byID   map[int64]*models.SensorRecord
	nextID int64
}

var _ repository.SensorRepository = (*SensorStore)(nil)

func (s *SensorStore) Name() string { return repository.StorePostgres }

func (s *SensorStore) Ping(ctx context.Context) error { return s.rec.record(s.Name(), "Ping") }

func (s *SensorStore) Close() error { return nil }

func (s *SensorStore) Create(ctx context.Context, name string) (*models.SensorRecord, error) {
	if err := s.rec.record(s.Name(), "Create"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.byID {
		if rec.Name == name {
			return nil, errors.NewConflictError("Sensor with same name already registered", nil)
		}
	}
	s.nextID++
	rec := &models.SensorRecord{ID: s.nextID, Name: name, JoinedAt: time.Now().UTC()}
	s.byID[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (s *SensorStore) Get(ctx context.Context, id int64) (*models.SensorRecord, error) {
	if err := s.rec.record(s.Name(), "Get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("Sensor not found", nil)
	}
	cp := *rec
	return &cp, nil
}

func (s *SensorStore) GetByName(ctx context.Context, name string) (*models.SensorRecord, error) {
	if err := s.rec.record(s.Name(), "GetByName"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.byID {
		if rec.Name == name {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundError("Sensor not found", nil)
}

func (s *SensorStore) List(ctx context.Context, offset, limit int) ([]*models.SensorRecord, error) {
	if err := s.rec.record(s.Name(), "List"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []*models.SensorRecord{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		cp := *s.byID[ids[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *SensorStore) Delete(ctx context.Context, id int64) error {
	if err := s.rec.record(s.Name(), "Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return errors.NewNotFoundError("Sensor not found", nil)
	}
	delete(s.byID, id)
	return nil
}

// Count returns the number of stored rows.
func (s *SensorStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// DocumentStore fakes the document store.
type DocumentStore struct {
	rec  *Recorder
	mu   sync.Mutex
	byID map[int64]*models.Sensor
}

var _ repository.SensorDocumentRepository = (*DocumentStore)(nil)

func (d *DocumentStore) Name() string { return repository.StoreMongo }

func (d *DocumentStore) Ping(ctx context.Context) error { return d.rec.record(d.Name(), "Ping") }

func (d *DocumentStore) Close() error { return nil }

func (d *DocumentStore) Insert(ctx context.Context, sensor *models.Sensor) error {
	if err := d.rec.record(d.Name(), "Insert"); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, doc := range d.byID {
		if doc.ID == sensor.ID || doc.Name == sensor.Name {
			return errors.NewConflictError("Sensor with same name already registered", nil)
		}
	}
	cp := *sensor
	d.byID[sensor.ID] = &cp
	return nil
}

func (d *DocumentStore) Get(ctx context.Context, id int64) (*models.Sensor, error) {
	if err := d.rec.record(d.Name(), "Get"); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("Sensor not found", nil)
	}
	cp := *doc
	return &cp, nil
}

func (d *DocumentStore) GetByName(ctx context.Context, name string) (*models.Sensor, error) {
	if err := d.rec.record(d.Name(), "GetByName"); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, doc := range d.byID {
		if doc.Name == name {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, errors.NewNotFoundError("Sensor not found", nil)
}

func (d *DocumentStore) Delete(ctx context.Context, id int64) error {
	if err := d.rec.record(d.Name(), "Delete"); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byID, id)
	return nil
}

func (d *DocumentStore) Near(ctx context.Context, latitude, longitude, radius float64) ([]*models.Sensor, error) {
	if err := d.rec.record(d.Name(), "Near"); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []*models.Sensor{}
	for _, doc := range d.byID {
		if doc.Latitude >= latitude-radius && doc.Latitude <= latitude+radius &&
			doc.Longitude >= longitude-radius && doc.Longitude <= longitude+radius {
			cp := *doc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Remove drops a document without recording a call, simulating drift between stores.
func (d *DocumentStore) Remove(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byID, id)
}

// Has reports whether a document with id is stored.
func (d *DocumentStore) Has(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.byID[id]
	return ok
}

// DataStore fakes the time-series store, keyed by (sensor_id, last_seen).
type DataStore struct {
	rec  *Recorder
	mu   sync.Mutex
	rows map[int64]map[int64]models.Reading
}

var _ repository.SensorDataRepository = (*DataStore)(nil)

func (t *DataStore) Name() string { return repository.StoreTimescale }

func (t *DataStore) Ping(ctx context.Context) error { return t.rec.record(t.Name(), "Ping") }

func (t *DataStore) Close() error { return nil }

func (t *DataStore) UpsertReading(ctx context.Context, sensorID int64, reading *models.Reading) error {
	if err := t.rec.record(t.Name(), "UpsertReading"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rows[sensorID] == nil {
		t.rows[sensorID] = map[int64]models.Reading{}
	}
	t.rows[sensorID][reading.LastSeen.UnixNano()] = *reading
	return nil
}

func (t *DataStore) GetAggregates(ctx context.Context, sensorID int64, from, to time.Time, bucket models.Bucket) ([]models.SensorAggregate, error) {
	if err := t.rec.record(t.Name(), "GetAggregates"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	type sums struct {
		velocity, temperature, humidity [2]float64
	}
	buckets := map[time.Time]*sums{}
	for _, r := range t.rows[sensorID] {
		seen := r.LastSeen.UTC()
		if seen.Before(from) || seen.After(to) {
			continue
		}
		start := truncate(seen, bucket)
		s := buckets[start]
		if s == nil {
			s = &sums{}
			buckets[start] = s
		}
		add(&s.velocity, r.Velocity)
		add(&s.temperature, r.Temperature)
		add(&s.humidity, r.Humidity)
	}

	out := []models.SensorAggregate{}
	for start, s := range buckets {
		out = append(out, models.SensorAggregate{
			SensorID:    sensorID,
			Bucket:      start,
			Interval:    bucket,
			Velocity:    avg(s.velocity),
			Temperature: avg(s.temperature),
			Humidity:    avg(s.humidity),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket.Before(out[j].Bucket) })
	return out, nil
}

func (t *DataStore) DeleteBySensorID(ctx context.Context, sensorID int64) error {
	if err := t.rec.record(t.Name(), "DeleteBySensorID"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, sensorID)
	return nil
}

// Rows returns the stored readings of a sensor, ordered by last_seen.
func (t *DataStore) Rows(sensorID int64) []models.Reading {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []models.Reading{}
	for _, r := range t.rows[sensorID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.Before(out[j].LastSeen.Time) })
	return out
}

func truncate(t time.Time, bucket models.Bucket) time.Time {
	switch bucket {
	case models.BucketHour:
		return t.Truncate(time.Hour)
	case models.BucketWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case models.BucketYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

func add(acc *[2]float64, v *float64) {
	if v != nil {
		acc[0] += *v
		acc[1]++
	}
}

func avg(acc [2]float64) *float64 {
	if acc[1] == 0 {
		return nil
	}
	v := acc[0] / acc[1]
	return &v
}

// Cache fakes the latest-reading cache.
type Cache struct {
	rec    *Recorder
	mu     sync.Mutex
	latest map[int64]models.Reading
}

var _ repository.ReadingCache = (*Cache)(nil)

func (c *Cache) Name() string { return repository.StoreRedis }

func (c *Cache) Ping(ctx context.Context) error { return c.rec.record(c.Name(), "Ping") }

func (c *Cache) Close() error { return nil }

func (c *Cache) SetLatest(ctx context.Context, sensorID int64, reading *models.Reading) error {
	if err := c.rec.record(c.Name(), "SetLatest"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[sensorID] = *reading
	return nil
}

func (c *Cache) GetLatest(ctx context.Context, sensorID int64) (*models.Reading, error) {
	if err := c.rec.record(c.Name(), "GetLatest"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.latest[sensorID]
	if !ok {
		return nil, errors.NewNotFoundError("Sensor not found", nil)
	}
	return &r, nil
}

func (c *Cache) DeleteLatest(ctx context.Context, sensorID int64) error {
	if err := c.rec.record(c.Name(), "DeleteLatest"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.latest, sensorID)
	return nil
}

// Has reports whether a reading is cached for sensorID.
func (c *Cache) Has(sensorID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.latest[sensorID]
	return ok
}

// MetricsStore fakes the append-only wide-column store.
type MetricsStore struct {
	rec       *Recorder
	mu        sync.Mutex
	temps     map[int64][]float64
	batteries []models.BatteryFact
	types     map[string]map[int64]bool
	clock     time.Time
}

var _ repository.MetricsRepository = (*MetricsStore)(nil)

func (m *MetricsStore) Name() string { return repository.StoreCassandra }

func (m *MetricsStore) Ping(ctx context.Context) error { return m.rec.record(m.Name(), "Ping") }

func (m *MetricsStore) Close() error { return nil }

func (m *MetricsStore) AppendTemperature(ctx context.Context, sensorID int64, temperature float64) error {
	if err := m.rec.record(m.Name(), "AppendTemperature"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.temps[sensorID] = append(m.temps[sensorID], temperature)
	return nil
}

func (m *MetricsStore) AppendBattery(ctx context.Context, sensorID int64, battery float64) error {
	if err := m.rec.record(m.Name(), "AppendBattery"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// A logical clock keeps appends strictly ordered.
	m.clock = m.clock.Add(time.Millisecond)
	m.batteries = append(m.batteries, models.BatteryFact{SensorID: sensorID, Battery: battery, RecordedAt: m.clock})
	return nil
}

func (m *MetricsStore) AddTypeMembership(ctx context.Context, sensorType string, sensorID int64) error {
	if err := m.rec.record(m.Name(), "AddTypeMembership"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.types[sensorType] == nil {
		m.types[sensorType] = map[int64]bool{}
	}
	m.types[sensorType][sensorID] = true
	return nil
}

func (m *MetricsStore) TemperatureStats(ctx context.Context) ([]models.TemperatureStats, error) {
	if err := m.rec.record(m.Name(), "TemperatureStats"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TemperatureStats{}
	for id, values := range m.temps {
		st := models.TemperatureStats{SensorID: id, Min: values[0], Max: values[0]}
		var sum float64
		for _, v := range values {
			if v < st.Min {
				st.Min = v
			}
			if v > st.Max {
				st.Max = v
			}
			sum += v
		}
		st.Avg = sum / float64(len(values))
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SensorID < out[j].SensorID })
	return out, nil
}

func (m *MetricsStore) LatestBatteryLevels(ctx context.Context) ([]models.BatteryFact, error) {
	if err := m.rec.record(m.Name(), "LatestBatteryLevels"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[int64]models.BatteryFact{}
	for _, f := range m.batteries {
		latest[f.SensorID] = f
	}
	out := make([]models.BatteryFact, 0, len(latest))
	for _, f := range latest {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SensorID < out[j].SensorID })
	return out, nil
}

func (m *MetricsStore) CountByType(ctx context.Context) ([]models.TypeQuantity, error) {
	if err := m.rec.record(m.Name(), "CountByType"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TypeQuantity{}
	for t, ids := range m.types {
		out = append(out, models.TypeQuantity{Type: t, Quantity: int64(len(ids))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// Temperatures returns every appended temperature of a sensor.
func (m *MetricsStore) Temperatures(sensorID int64) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.temps[sensorID]...)
}

// Batteries returns every appended battery fact.
func (m *MetricsStore) Batteries() []models.BatteryFact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BatteryFact(nil), m.batteries...)
}

// SearchStore fakes the search index with case-insensitive substring matching.
type SearchStore struct {
	rec  *Recorder
	mu   sync.Mutex
	docs []models.SearchDocument
	// LastQuery holds the arguments of the latest Search call.
	LastQuery struct {
		Query      map[string]any
		SearchType models.SearchType
		Size       int
	}
}

var _ repository.SearchIndex = (*SearchStore)(nil)

func (s *SearchStore) Name() string { return repository.StoreElasticsearch }

func (s *SearchStore) Ping(ctx context.Context) error { return s.rec.record(s.Name(), "Ping") }

func (s *SearchStore) Close() error { return nil }

func (s *SearchStore) IndexSensor(ctx context.Context, doc models.SearchDocument) error {
	if err := s.rec.record(s.Name(), "IndexSensor"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *SearchStore) Search(ctx context.Context, query map[string]any, searchType models.SearchType, size int) ([]string, error) {
	if err := s.rec.record(s.Name(), "Search"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastQuery.Query, s.LastQuery.SearchType, s.LastQuery.Size = query, searchType, size

	names := []string{}
	for _, doc := range s.docs {
		if matches(doc, query) {
			names = append(names, doc.Name)
		}
		if len(names) == size {
			break
		}
	}
	return names, nil
}

// Documents returns everything indexed so far.
func (s *SearchStore) Documents() []models.SearchDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SearchDocument(nil), s.docs...)
}

func matches(doc models.SearchDocument, query map[string]any) bool {
	fields := map[string]string{"name": doc.Name, "type": doc.Type, "description": doc.Description}
	for field, want := range query {
		have, ok := fields[field]
		if !ok || !strings.Contains(strings.ToLower(have), strings.ToLower(fmt.Sprint(want))) {
			return false
		}
	}
	return true
}
