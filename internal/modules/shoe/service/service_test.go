package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"paceline.app/community/internal/entity"
	shoeDto "paceline.app/community/internal/modules/shoe/dto"
	shoeRepo "paceline.app/community/internal/modules/shoe/repository"
	"paceline.app/community/internal/testutil"
	"paceline.app/community/pkg/apperror"
	"paceline.app/community/pkg/storage"
)

func newTestService(t *testing.T, photos storage.PhotoStorage) (*gorm.DB, ShoeService) {
	db := testutil.NewDB(t)
	return db, NewShoeService(shoeRepo.NewShoeRepository(db), photos)
}

func TestDefaultShoeIsExclusive(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, nil)
	user := testutil.CreateUser(t, db, nil)
	other := testutil.CreateUser(t, db, nil)

	first, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "Pegasus", IsDefault: true})
	require.NoError(t, err)
	othersDefault, err := svc.Create(ctx, other.ID, shoeDto.CreateShoeRequest{Name: "Clifton", IsDefault: true})
	require.NoError(t, err)

	second, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "Vaporfly", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	shoes, err := svc.List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, shoes, 2)
	defaults := 0
	for _, s := range shoes {
		if s.IsDefault {
			defaults++
			assert.Equal(t, second.ID, s.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	updated, err := svc.Update(ctx, user.ID, uuid.MustParse(first.ID), shoeDto.UpdateShoeRequest{IsDefault: testutil.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	var prev entity.Shoe
	require.NoError(t, db.Where("id = ?", second.ID).Take(&prev).Error)
	assert.False(t, prev.IsDefault)

	var untouched entity.Shoe
	require.NoError(t, db.Where("id = ?", othersDefault.ID).Take(&untouched).Error)
	assert.True(t, untouched.IsDefault, "another runner's default is not cleared")
}

func TestRetiredShoesAreHidden(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, nil)
	user := testutil.CreateUser(t, db, nil)

	shoe, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: " <i>Old</i> trainers "})
	require.NoError(t, err)
	assert.Equal(t, "Old trainers", shoe.Name)

	_, err = svc.Update(ctx, user.ID, uuid.MustParse(shoe.ID), shoeDto.UpdateShoeRequest{IsRetired: testutil.Ptr(true)})
	require.NoError(t, err)

	active, err := svc.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, user.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "<b></b>"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestAddMileageIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, nil)
	owner := testutil.CreateUser(t, db, nil)
	stranger := testutil.CreateUser(t, db, nil)

	shoe, err := svc.Create(ctx, owner.ID, shoeDto.CreateShoeRequest{Name: "Ghost"})
	require.NoError(t, err)
	shoeID := uuid.MustParse(shoe.ID)

	ok, err := svc.AddMileage(ctx, owner.ID, shoeID, 5.2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.AddMileage(ctx, owner.ID, shoeID, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.AddMileage(ctx, stranger.ID, shoeID, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.AddMileage(ctx, owner.ID, uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, ok)

	shoes, err := svc.List(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, shoes, 1)
	assert.InDelta(t, 15.2, shoes[0].TotalDistanceKM, 0.0001)
}

func TestOwnershipOnMutations(t *testing.T) {
	ctx := context.Background()
	db, svc := newTestService(t, nil)
	owner := testutil.CreateUser(t, db, nil)
	stranger := testutil.CreateUser(t, db, nil)

	shoe, err := svc.Create(ctx, owner.ID, shoeDto.CreateShoeRequest{Name: "Ghost"})
	require.NoError(t, err)
	shoeID := uuid.MustParse(shoe.ID)

	_, err = svc.Update(ctx, stranger.ID, shoeID, shoeDto.UpdateShoeRequest{Name: testutil.Ptr("Mine now")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.Delete(ctx, stranger.ID, shoeID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner.ID, shoeID))
	shoes, err := svc.List(ctx, owner.ID, true)
	require.NoError(t, err)
	assert.Empty(t, shoes)
}

func TestUploadPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the url", func(t *testing.T) {
		photos := &testutil.FakePhotos{}
		db, svc := newTestService(t, photos)
		user := testutil.CreateUser(t, db, nil)
		shoe, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "Ghost"})
		require.NoError(t, err)

		got, err := svc.UploadPhoto(ctx, user.ID, uuid.MustParse(shoe.ID), testutil.FileHeader(t, "image/jpeg", []byte("jpeg")))
		require.NoError(t, err)
		require.NotNil(t, got.PhotoURL)
		assert.Contains(t, *got.PhotoURL, "/shoes/"+shoe.ID)

		again, err := svc.UploadPhoto(ctx, user.ID, uuid.MustParse(shoe.ID), testutil.FileHeader(t, "image/png", []byte("png")))
		require.NoError(t, err)
		assert.Equal(t, *got.PhotoURL, *again.PhotoURL)
		assert.Len(t, photos.Uploads, 2)
		assert.Empty(t, photos.Deleted, "re-upload overwrites the same public id")

		require.NoError(t, svc.Delete(ctx, user.ID, uuid.MustParse(shoe.ID)))
		assert.Equal(t, []string{*got.PhotoURL}, photos.Deleted)
	})

	t.Run("rejects non images", func(t *testing.T) {
		db, svc := newTestService(t, &testutil.FakePhotos{})
		user := testutil.CreateUser(t, db, nil)
		shoe, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "Ghost"})
		require.NoError(t, err)

		_, err = svc.UploadPhoto(ctx, user.ID, uuid.MustParse(shoe.ID), testutil.FileHeader(t, "application/pdf", []byte("%PDF")))
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("without storage", func(t *testing.T) {
		db, svc := newTestService(t, nil)
		user := testutil.CreateUser(t, db, nil)
		shoe, err := svc.Create(ctx, user.ID, shoeDto.CreateShoeRequest{Name: "Ghost"})
		require.NoError(t, err)

		_, err = svc.UploadPhoto(ctx, user.ID, uuid.MustParse(shoe.ID), testutil.FileHeader(t, "image/png", []byte("png")))
		assert.ErrorIs(t, err, storage.ErrNotConfigured)
	})
}
