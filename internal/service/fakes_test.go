package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/student-service/internal/models"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

type fakeTx struct {
	calls     int
	committed int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	f.committed++
	return nil
}

type fakeStudentRepo struct {
	nextID   int64
	students map[int64]models.Student
	lastPage models.StudentPageRequest
	creates  int
	err      error
	clock    time.Time
	// onRead runs inside aggregate reads, after the store has been consulted.
	onRead func()
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[int64]models.Student{}, clock: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeStudentRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStudentRepo) sorted(keep func(models.Student) bool) []models.Student {
	out := []models.Student{}
	for _, s := range f.students {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStudentRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeStudentRepo) findBy(match func(models.Student) bool) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.students {
		if match(s) {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return f.findBy(func(s models.Student) bool { return s.StudentID == studentID })
}

func (f *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	return f.findBy(func(s models.Student) bool { return s.Email == email })
}

func (f *fakeStudentRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := f.students[id]
	return ok, f.err
}

func (f *fakeStudentRepo) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	_, err := f.FindByStudentID(ctx, studentID)
	return err == nil, nil
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStudentRepo) List(ctx context.Context, page models.StudentPageRequest) ([]models.Student, int64, error) {
	f.lastPage = page
	if page.SortBy != "id" && page.SortBy != "lastName" {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "unsupported sort field")
	}
	all := f.sorted(func(models.Student) bool { return true })
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	return f.sorted(func(models.Student) bool { return true }), f.err
}

func (f *fakeStudentRepo) ListByDepartment(ctx context.Context, department string) ([]models.Student, error) {
	return f.sorted(func(s models.Student) bool { return s.Department != nil && *s.Department == department }), nil
}

func (f *fakeStudentRepo) ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error) {
	return f.sorted(func(s models.Student) bool { return s.Status == status }), nil
}

func (f *fakeStudentRepo) ListByDepartmentAndStatus(ctx context.Context, department string, status models.StudentStatus) ([]models.Student, error) {
	return f.sorted(func(s models.Student) bool {
		return s.Department != nil && *s.Department == department && s.Status == status
	}), nil
}

func (f *fakeStudentRepo) ListByYearOfStudy(ctx context.Context, year int) ([]models.Student, error) {
	return f.sorted(func(s models.Student) bool { return s.YearOfStudy != nil && *s.YearOfStudy == year }), nil
}

func (f *fakeStudentRepo) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	needle := strings.ToLower(name)
	return f.sorted(func(s models.Student) bool {
		return strings.Contains(strings.ToLower(s.FirstName), needle) || strings.Contains(strings.ToLower(s.LastName), needle)
	}), nil
}

func (f *fakeStudentRepo) CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	list, _ := f.ListByStatus(ctx, status)
	return int64(len(list)), nil
}

func (f *fakeStudentRepo) CountByDepartment(ctx context.Context, department string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	list, _ := f.ListByDepartment(ctx, department)
	return int64(len(list)), nil
}

func (f *fakeStudentRepo) Departments(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range f.students {
		if s.Department == nil {
			continue
		}
		if _, ok := seen[*s.Department]; !ok {
			seen[*s.Department] = struct{}{}
			out = append(out, *s.Department)
		}
	}
	sort.Strings(out)
	if f.onRead != nil {
		f.onRead()
	}
	return out, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.err != nil {
		return f.err
	}
	f.creates++
	f.nextID++
	student.ID = f.nextID
	student.CreatedAt = f.tick()
	student.UpdatedAt = student.CreatedAt
	stored := *student
	stored.Admissions = nil
	f.students[student.ID] = stored
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := f.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	student.UpdatedAt = f.tick()
	stored := *student
	stored.Admissions = nil
	f.students[student.ID] = stored
	return nil
}

func (f *fakeStudentRepo) UpdateStatus(ctx context.Context, student *models.Student) error {
	stored, ok := f.students[student.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = student.Status
	stored.UpdatedAt = f.tick()
	student.UpdatedAt = stored.UpdatedAt
	f.students[student.ID] = stored
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.students[id]; !ok {
		return false, nil
	}
	delete(f.students, id)
	return true, nil
}

type fakeAdmissionRepo struct {
	nextID     int64
	admissions []models.Admission
	students   *fakeStudentRepo
	batchCalls int
}

func (f *fakeAdmissionRepo) Create(ctx context.Context, admission *models.Admission) error {
	f.nextID++
	admission.ID = f.nextID
	admission.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f.admissions = append(f.admissions, *admission)
	return nil
}

func (f *fakeAdmissionRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.Admission, error) {
	out := []models.Admission{}
	for _, a := range f.admissions {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAdmissionRepo) ListByStudentIDs(ctx context.Context, studentIDs []int64) ([]models.Admission, error) {
	f.batchCalls++
	wanted := map[int64]bool{}
	for _, id := range studentIDs {
		wanted[id] = true
	}
	out := []models.Admission{}
	for _, a := range f.admissions {
		if wanted[a.StudentID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAdmissionRepo) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.Admission, error) {
	student, err := f.students.FindByStudentID(ctx, studentNumber)
	if err != nil {
		return []models.Admission{}, nil
	}
	return f.ListByStudent(ctx, student.ID)
}

func (f *fakeAdmissionRepo) List(ctx context.Context, filter models.AdmissionFilter) ([]models.Admission, error) {
	out := []models.Admission{}
	for _, a := range f.admissions {
		if filter.Status != nil && a.AdmissionStatus != *filter.Status {
			continue
		}
		if filter.Year != nil && a.AdmissionYear != *filter.Year {
			continue
		}
		if filter.Program != "" && a.Program != filter.Program {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAdmissionRepo) CountByStatus(ctx context.Context, status models.AdmissionStatus) (int64, error) {
	list, _ := f.List(ctx, models.AdmissionFilter{Status: &status})
	return int64(len(list)), nil
}

func (f *fakeAdmissionRepo) CountByYear(ctx context.Context, year int) (int64, error) {
	list, _ := f.List(ctx, models.AdmissionFilter{Year: &year})
	return int64(len(list)), nil
}

func (f *fakeAdmissionRepo) Programs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range f.admissions {
		if !seen[a.Program] {
			seen[a.Program] = true
			out = append(out, a.Program)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeAdmissionRepo) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	kept := f.admissions[:0]
	var removed int64
	for _, a := range f.admissions {
		if a.StudentID == studentID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.admissions = kept
	return removed, nil
}

type fakeCacheRepo struct {
	values      map[string][]byte
	invalidated []string
	onSet       func()
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.values == nil {
		f.values = map[string][]byte{}
	}
	f.values[key] = raw
	if f.onSet != nil {
		f.onSet()
	}
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.values {
		if strings.HasPrefix(key, prefix) {
			delete(f.values, key)
		}
	}
	return nil
}
