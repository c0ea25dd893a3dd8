package routehandlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/api"
	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/delivery"
	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/processing"
	rh "github.com/coreybb/mailcraft/route-handlers"
	"github.com/coreybb/mailcraft/storage"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	templates map[string]models.Template
	projects  map[string]models.Project
	profiles  map[string]models.Profile

	profileErr error
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		templates: map[string]models.Template{},
		projects:  map[string]models.Project{},
		profiles:  map[string]models.Profile{},
	}
}

// tick returns a strictly increasing timestamp.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s not found: %w", kind, id, sql.ErrNoRows)
}

func (m *memStore) CreateTemplate(_ context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.UpdatedAt = m.tick()
	m.templates[t.ID] = *t
	return nil
}

func (m *memStore) GetTemplateByID(_ context.Context, templateID, userID string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok || t.UserID != userID {
		return nil, notFound("template", templateID)
	}
	return &t, nil
}

func (m *memStore) GetTemplatesByUserID(_ context.Context, userID, search string) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Template
	for _, t := range m.templates {
		if t.UserID == userID && strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) GetTemplatesByProjectID(_ context.Context, projectID, userID string) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Template
	for _, t := range m.templates {
		if t.UserID == userID && t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTemplate(_ context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return notFound("template", t.ID)
	}
	t.UpdatedAt = m.tick()
	t.ViewsCount, t.ForksCount = existing.ViewsCount, existing.ForksCount
	m.templates[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTemplate(_ context.Context, templateID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok || t.UserID != userID {
		return notFound("template", templateID)
	}
	delete(m.templates, templateID)
	return nil
}

func (m *memStore) DuplicateTemplate(_ context.Context, source, dup *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup.IsPublic = false
	dup.UpdatedAt = m.tick()
	m.templates[dup.ID] = *dup
	if source.IsPublic {
		s := m.templates[source.ID]
		s.ForksCount++
		m.templates[source.ID] = s
	}
	return nil
}

func (m *memStore) gallery(t models.Template) models.GalleryTemplate {
	return models.GalleryTemplate{Template: t, OwnerUsername: m.profiles[t.UserID].PublicUsername}
}

func (m *memStore) GetPublicTemplates(_ context.Context, search string) ([]models.GalleryTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GalleryTemplate
	for _, t := range m.templates {
		if t.IsPublic && strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			out = append(out, m.gallery(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ViewsCount > out[j].ViewsCount })
	return out, nil
}

func (m *memStore) GetPublicTemplate(_ context.Context, templateID string) (*models.GalleryTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok || !t.IsPublic {
		return nil, notFound("public template", templateID)
	}
	g := m.gallery(t)
	return &g, nil
}

func (m *memStore) IncrementViews(_ context.Context, templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok || !t.IsPublic {
		return notFound("public template", templateID)
	}
	t.ViewsCount++
	m.templates[templateID] = t
	return nil
}

func (m *memStore) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UpdatedAt = m.tick()
	m.projects[p.ID] = *p
	return nil
}

func (m *memStore) GetProjectByID(_ context.Context, projectID, userID string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, notFound("project", projectID)
	}
	return &p, nil
}

func (m *memStore) GetProjectsByUserID(_ context.Context, userID, search string) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		if p.UserID == userID && strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) DeleteProject(_ context.Context, projectID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok || p.UserID != userID {
		return notFound("project", projectID)
	}
	delete(m.projects, projectID)
	return nil
}

func (m *memStore) EnsureProfile(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = models.Profile{ID: userID, PublicUsername: "user-" + userID[:6], CreatedAt: m.tick()}
		m.profiles[userID] = p
	}
	return &p, nil
}

type fakeProvider struct {
	mu   sync.Mutex
	err  error
	sent []delivery.Message
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(_ context.Context, msg delivery.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeRecorder struct {
	mu    sync.Mutex
	sends []models.TestSend
}

func (f *fakeRecorder) CreateTestSend(_ context.Context, send *models.TestSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, *send)
	return nil
}

// testServer wires the real router to in-memory collaborators.
type testServer struct {
	handler  http.Handler
	store    *memStore
	provider *fakeProvider
	recorder *fakeRecorder
	baseDir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := newMemStore()
	provider := &fakeProvider{}
	recorder := &fakeRecorder{}
	baseDir := t.TempDir()

	processor := processing.NewExportProcessor(store, conversion.NewConverter(), storage.NewLocalFileStorer(baseDir))
	blocks := rh.NewBlockHandler(store)
	blocks.NewID = document.SequentialIDs("blk")

	handler := api.SetupRoutes(api.Handlers{
		Templates: rh.NewTemplateHandler(store, store),
		Blocks:    blocks,
		Exports:   rh.NewExportHandler(store, processor, delivery.NewTestSendService(recorder, provider)),
		Projects:  rh.NewProjectHandler(store, store, store),
		Gallery:   rh.NewGalleryHandler(store, store),
		Profiles:  rh.NewProfileHandler(store),
	}, time.Minute)

	return &testServer{handler: handler, store: store, provider: provider, recorder: recorder, baseDir: baseDir}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

const (
	userA = "11111111-1111-4111-8111-111111111111"
	userB = "22222222-2222-4222-8222-222222222222"
)

func templatesPath(userID string) string {
	return "/api/users/" + userID + "/templates"
}

// createTemplate creates a template for userID and returns it.
func (s *testServer) createTemplate(t *testing.T, userID string, body any) models.Template {
	t.Helper()
	rr := s.do(t, http.MethodPost, templatesPath(userID), body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Template](t, rr)
}

func httpGetWithHeader(t *testing.T, s *testServer, path, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(key, value)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}
