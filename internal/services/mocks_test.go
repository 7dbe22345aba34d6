package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

// In-memory repository used across the service tests.

type memRepository struct {
	quiz *memQuizRepo
	tax  map[models.TaxonomyKind]*memTaxonomyRepo
}

func newMemRepository() *memRepository {
	return &memRepository{
		quiz: &memQuizRepo{docs: make(map[string]*models.RawQuiz)},
		tax: map[models.TaxonomyKind]*memTaxonomyRepo{
			models.KindExam:    {entities: make(map[string]*models.NamedEntity)},
			models.KindChapter: {entities: make(map[string]*models.NamedEntity)},
			models.KindClass:   {entities: make(map[string]*models.NamedEntity)},
			models.KindSubject: {entities: make(map[string]*models.NamedEntity)},
		},
	}
}

func (r *memRepository) Quiz() repositories.QuizRepository { return r.quiz }
func (r *memRepository) Taxonomy(kind models.TaxonomyKind) repositories.TaxonomyRepository {
	return r.tax[kind]
}
func (r *memRepository) Ping(context.Context) error  { return nil }
func (r *memRepository) Close(context.Context) error { return nil }

// seedTaxonomy inserts a named entity and returns its hex id.
func (r *memRepository) seedTaxonomy(kind models.TaxonomyKind, name string) string {
	entity := &models.NamedEntity{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.tax[kind].entities[entity.ID.Hex()] = entity
	return entity.ID.Hex()
}

func (r *memRepository) taxonomyByID(kind models.TaxonomyKind, id string) *models.NamedEntity {
	return r.tax[kind].entities[id]
}

type memQuizRepo struct {
	mu   sync.Mutex
	docs map[string]*models.RawQuiz

	createErr  error
	replaceErr error
}

func (m *memQuizRepo) Create(_ context.Context, quiz *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.docs[quiz.ID.Hex()] = rawFromQuiz(quiz)
	return nil
}

func (m *memQuizRepo) GetRaw(_ context.Context, id primitive.ObjectID) (*models.RawQuiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[id.Hex()]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return raw, nil
}

func (m *memQuizRepo) Replace(_ context.Context, quiz *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if _, ok := m.docs[quiz.ID.Hex()]; !ok {
		return repositories.ErrNotFound
	}
	m.docs[quiz.ID.Hex()] = rawFromQuiz(quiz)
	return nil
}

func (m *memQuizRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.QuizStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[id.Hex()]
	if !ok {
		return repositories.ErrNotFound
	}
	raw.Status = string(status)
	raw.UpdatedAt = updatedAt
	return nil
}

func (m *memQuizRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id.Hex()]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.docs, id.Hex())
	return nil
}

func (m *memQuizRepo) List(_ context.Context, filters repositories.QuizFilters) ([]*models.RawQuiz, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.RawQuiz
	for _, raw := range m.docs {
		if filters.Status != nil && raw.Status != string(*filters.Status) {
			continue
		}
		if filters.TestType != nil && raw.TestType != string(*filters.TestType) {
			continue
		}
		matched = append(matched, raw)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filters.Offset:]
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (m *memQuizRepo) Count(_ context.Context, filters repositories.QuizFilters) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, raw := range m.docs {
		if filters.Status != nil && raw.Status != string(*filters.Status) {
			continue
		}
		if filters.TestType != nil && raw.TestType != string(*filters.TestType) {
			continue
		}
		n++
	}
	return n, nil
}

type memTaxonomyRepo struct {
	mu       sync.Mutex
	entities map[string]*models.NamedEntity
}

func (m *memTaxonomyRepo) Create(_ context.Context, entity *models.NamedEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.ID.Hex()] = entity
	return nil
}

func (m *memTaxonomyRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.NamedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.entities[id.Hex()]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return entity, nil
}

func (m *memTaxonomyRepo) GetByName(_ context.Context, name string) (*models.NamedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entity := range m.entities {
		if entity.Name == name {
			return entity, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memTaxonomyRepo) ExistsOtherWithName(_ context.Context, name string, excludeID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entity := range m.entities {
		if entity.Name == name && id != excludeID.Hex() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTaxonomyRepo) List(context.Context) ([]*models.NamedEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.NamedEntity, 0, len(m.entities))
	for _, entity := range m.entities {
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memTaxonomyRepo) Rename(_ context.Context, id primitive.ObjectID, name string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.entities[id.Hex()]
	if !ok {
		return repositories.ErrNotFound
	}
	entity.Name = name
	entity.UpdatedAt = &updatedAt
	return nil
}

func (m *memTaxonomyRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[id.Hex()]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.entities, id.Hex())
	return nil
}

func (m *memTaxonomyRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entities)), nil
}

func (m *memTaxonomyRepo) AddRef(_ context.Context, id primitive.ObjectID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.entities[id.Hex()]
	if !ok {
		return nil // absent target is not an error, mirrors $addToSet on no match
	}
	arr := refField(entity, field)
	for _, v := range *arr {
		if v == value {
			return nil
		}
	}
	*arr = append(*arr, value)
	return nil
}

func (m *memTaxonomyRepo) RemoveRef(_ context.Context, id primitive.ObjectID, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.entities[id.Hex()]
	if !ok {
		return nil
	}
	arr := refField(entity, field)
	kept := (*arr)[:0]
	for _, v := range *arr {
		if v != value {
			kept = append(kept, v)
		}
	}
	*arr = kept
	return nil
}

func refField(entity *models.NamedEntity, field string) *[]string {
	switch field {
	case repositories.FieldSubjectIDs:
		return &entity.SubjectIDs
	case repositories.FieldChapterIDs:
		return &entity.ChapterIDs
	default:
		return &entity.QuizIDs
	}
}

// rawFromQuiz converts a canonical quiz back into the stored raw shape.
func rawFromQuiz(q *models.Quiz) *models.RawQuiz {
	raw := &models.RawQuiz{
		ID:        q.ID,
		Title:     q.Title,
		TestType:  string(q.TestType),
		ClassID:   q.ClassID,
		SubjectID: q.SubjectID,
		ChapterID: q.ChapterID,
		ExamID:    q.ExamID,
		Tags:      q.Tags,
		Status:    string(q.Status),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
	if q.TimerMinutes != nil {
		raw.TimerMinutes = flexPtr(float64(*q.TimerMinutes))
	}
	for _, s := range q.Sections {
		rs := models.RawSection{ID: s.ID, Name: s.Name}
		if s.QuestionLimit != nil {
			rs.QuestionLimit = flexPtr(float64(*s.QuestionLimit))
		}
		if s.TimerMinutes != nil {
			rs.TimerMinutes = flexPtr(float64(*s.TimerMinutes))
		}
		for _, qu := range s.Questions {
			rq := models.RawQuestion{
				ID:            qu.ID,
				Text:          qu.Text,
				ImageURL:      qu.ImageURL,
				ImageKey:      qu.ImageKey,
				Marks:         flexPtr(qu.Marks),
				NegativeMarks: flexPtr(qu.NegativeMarks),
				Explanation:   qu.Explanation,
				Tags:          qu.Tags,
			}
			for _, o := range qu.Options {
				rq.Options = append(rq.Options, models.RawOption{
					ID:        o.ID,
					Text:      o.Text,
					ImageURL:  o.ImageURL,
					ImageKey:  o.ImageKey,
					IsCorrect: o.IsCorrect,
					Tags:      o.Tags,
				})
			}
			rs.Questions = append(rs.Questions, rq)
		}
		raw.Sections = append(raw.Sections, rs)
	}
	return raw
}

func flexPtr(f float64) *models.FlexNumber {
	n := models.FlexNumber(f)
	return &n
}
