package resource

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/resource/dto"
	"newera.app/reentry/internal/modules/resource/repository"
	"newera.app/reentry/pkg/apperror"
	commonDto "newera.app/reentry/pkg/dto"
)

type memResourceRepo struct {
	items  map[uint]*entity.Resource
	nextID uint
	clicks map[uint]int
}

func newMemResourceRepo() *memResourceRepo {
	return &memResourceRepo{items: map[uint]*entity.Resource{}, clicks: map[uint]int{}}
}

func (r *memResourceRepo) Create(_ context.Context, res *entity.Resource) error {
	r.nextID++
	res.ID = r.nextID
	res.UpdatedAt = time.Now()
	r.items[res.ID] = res
	return nil
}

func (r *memResourceRepo) Update(_ context.Context, res *entity.Resource, tags *[]entity.Tag) error {
	if tags != nil {
		res.Tags = *tags
	}
	r.items[res.ID] = res
	return nil
}

func (r *memResourceRepo) FindByID(_ context.Context, id uint) (*entity.Resource, error) {
	res, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return res, nil
}

func (r *memResourceRepo) FindByIDs(_ context.Context, ids []uint) ([]entity.Resource, error) {
	var out []entity.Resource
	for _, id := range ids {
		if res, ok := r.items[id]; ok {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *memResourceRepo) FindAll(_ context.Context, f repository.ListFilter) ([]*entity.Resource, int64, error) {
	var out []*entity.Resource
	for _, res := range r.items {
		if !res.IsActive && !f.IncludeInactive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(res.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *memResourceRepo) IncrementClicks(_ context.Context, id uint, delta int) error {
	r.clicks[id] += delta
	return nil
}

type memTagRepo struct {
	tags map[uint]entity.Tag
}

func (r *memTagRepo) Create(context.Context, *entity.Tag) error { return nil }
func (r *memTagRepo) FindByID(context.Context, uint) (*entity.Tag, error) { return nil, gorm.ErrRecordNotFound }
func (r *memTagRepo) FindByName(context.Context, string) (*entity.Tag, error) { return nil, gorm.ErrRecordNotFound }
func (r *memTagRepo) FindAll(context.Context, string) ([]*entity.Tag, error) { return nil, nil }
func (r *memTagRepo) Rename(context.Context, uint, string) error { return nil }

func (r *memTagRepo) FindByIDs(_ context.Context, ids []uint) ([]entity.Tag, error) {
	var out []entity.Tag
	for _, id := range ids {
		if t, ok := r.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSearch struct {
	indexed []uint
	hits    []uint
	fail    bool
}

func (f *fakeSearch) IndexResource(res *entity.Resource) error {
	if f.fail {
		return errors.New("meilisearch unavailable")
	}
	f.indexed = append(f.indexed, res.ID)
	return nil
}

func (f *fakeSearch) DeleteResource(uint) error { return nil }

func (f *fakeSearch) SearchResources(string, int64) ([]uint, error) { return f.hits, nil }

type fakeStorage struct {
	uploads []string
	deleted []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	_, _ = io.ReadAll(r)
	url := "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + fileName
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func newTestService(search *fakeSearch, store *fakeStorage) (ResourceService, *memResourceRepo) {
	repo := newMemResourceRepo()
	tags := &memTagRepo{tags: map[uint]entity.Tag{1: {ID: 1, Name: "Food"}, 2: {ID: 2, Name: "Housing"}}}
	opts := Options{Clicks: NewClickCounter(nil, repo, zap.NewNop())}
	if search != nil {
		opts.Search = search
	}
	if store != nil {
		opts.Storage = store
	}
	return NewResourceService(repo, tags, opts), repo
}

func TestCreateResourceAppliesDefaultsAndIndexes(t *testing.T) {
	search := &fakeSearch{}
	svc, _ := newTestService(search, nil)

	res, err := svc.CreateResource(context.Background(), dto.CreateResourceRequest{
		Name:   "Food Bank",
		TagIDs: []uint{1, 1, 2},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "PA", res.State)
	assert.Equal(t, "Pittsburgh", res.City)
	assert.True(t, res.IsActive)
	assert.Len(t, res.Tags, 2)
	assert.Equal(t, []uint{res.ID}, search.indexed)
}

func TestCreateResourceUnknownTag(t *testing.T) {
	svc, repo := newTestService(nil, nil)

	_, err := svc.CreateResource(context.Background(), dto.CreateResourceRequest{Name: "Shelter", TagIDs: []uint{1, 9}}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, repo.items)
}

func TestIndexFailureDoesNotFailSave(t *testing.T) {
	svc, repo := newTestService(&fakeSearch{fail: true}, nil)

	_, err := svc.CreateResource(context.Background(), dto.CreateResourceRequest{Name: "Clinic"}, nil)
	require.NoError(t, err)
	assert.Len(t, repo.items, 1)
}

func TestImageUploadAndRedirectTarget(t *testing.T) {
	store := &fakeStorage{}
	svc, _ := newTestService(nil, store)
	ctx := context.Background()

	created, err := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Clinic"}, &commonDto.ImageFile{
		Reader:   strings.NewReader("png"),
		FileName: "logo.png",
	})
	require.NoError(t, err)
	assert.True(t, created.HasImage)

	url, err := svc.GetImageURL(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, store.uploads[0], url)

	_, err = svc.UploadImage(ctx, created.ID, commonDto.ImageFile{Reader: strings.NewReader("jpg"), FileName: "new.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{store.uploads[0]}, store.deleted)
}

func TestImageWithoutStorageOrImage(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()

	_, err := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Clinic"}, &commonDto.ImageFile{Reader: strings.NewReader("x"), FileName: "x.png"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	created, err := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Clinic"}, nil)
	require.NoError(t, err)

	_, err = svc.GetImageURL(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetResourceCountsClicksAndHidesInactive(t *testing.T) {
	svc, repo := newTestService(nil, nil)
	ctx := context.Background()

	created, err := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Pantry"}, nil)
	require.NoError(t, err)

	_, err = svc.GetResource(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetResource(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.clicks[created.ID])

	inactive := false
	_, err = svc.UpdateResource(ctx, created.ID, dto.UpdateResourceRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.GetResource(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.GetResource(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSearchResourcesKeepsIndexOrder(t *testing.T) {
	search := &fakeSearch{}
	svc, _ := newTestService(search, nil)
	ctx := context.Background()

	a, _ := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Alpha"}, nil)
	b, _ := svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Beta"}, nil)
	search.hits = []uint{b.ID, 99, a.ID}

	out, err := svc.SearchResources(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Beta", out[0].Name)
	assert.Equal(t, "Alpha", out[1].Name)
}

func TestSearchResourcesFallsBackToDatabase(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	ctx := context.Background()

	_, _ = svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Food Bank"}, nil)
	_, _ = svc.CreateResource(ctx, dto.CreateResourceRequest{Name: "Legal Aid"}, nil)

	out, err := svc.SearchResources(ctx, "food", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Food Bank", out[0].Name)

	list, meta, err := svc.ListResources(ctx, dto.ResourceFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), meta.TotalItems)
	assert.Equal(t, 1, meta.CurrentPage)
}

func TestReindexResourcesIncludesInactive(t *testing.T) {
	search := &fakeSearch{}
	svc, repo := newTestService(search, nil)
	repo.items[1] = &entity.Resource{ID: 1, Name: "Food Bank", IsActive: true}
	repo.items[2] = &entity.Resource{ID: 2, Name: "Closed Shelter", IsActive: false}

	n, err := svc.ReindexResources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uint{1, 2}, search.indexed)
}

func TestReindexResourcesWithoutSearchIsNoop(t *testing.T) {
	svc, repo := newTestService(nil, nil)
	repo.items[1] = &entity.Resource{ID: 1, Name: "Food Bank", IsActive: true}

	n, err := svc.ReindexResources(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
