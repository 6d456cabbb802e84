package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/server/inference"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageFixture struct {
	svc     *ImageService
	store   *fakeStore
	reports *fakeReportsRepo
	fwd     *fakeEnqueuer
}

func newImageFixture(t *testing.T) *imageFixture {
	t.Helper()
	f := &imageFixture{store: &fakeStore{}, reports: &fakeReportsRepo{}, fwd: &fakeEnqueuer{}}
	f.svc = NewImageService(newSQLMockDB(t), &fakeRepoMgr{users: newFakeUsersRepo(), reports: f.reports}, f.store, f.fwd, nopLogger())
	return f
}

var alice = &Principal{ID: 7, Login: "alice", Role: models.RoleShiftLead}

func TestUpload(t *testing.T) {
	f := newImageFixture(t)

	rep, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "MyPhoto.JPG", ContentType: "image/JPG", Data: []byte("jpeg")})
	require.NoError(t, err)

	assert.Equal(t, models.ReportPending, rep.Status)
	assert.Equal(t, int64(7), rep.SubmitterID)
	assert.Equal(t, "db://images/1", rep.Location)
	assert.Equal(t, []storage.Object{{Filename: "MyPhoto.JPG", ContentType: "image/JPG", Data: []byte("jpeg")}}, f.store.puts)
	assert.Equal(t, []inference.Job{{
		ReportID:    rep.ID,
		Filename:    "MyPhoto.JPG",
		ContentType: "image/JPG",
		Location:    "db://images/1",
		Data:        []byte("jpeg"),
	}}, f.fwd.jobs)
}

func TestUpload_DefaultContentType(t *testing.T) {
	f := newImageFixture(t)

	_, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "blob", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.reports.created[0].ContentType)
}

func TestUpload_QueueFullStillAccepted(t *testing.T) {
	f := newImageFixture(t)
	f.fwd.full = true

	rep, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "a.jpg", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, rep.Status)
	assert.Len(t, f.reports.created, 1)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("no principal", func(t *testing.T) {
		f := newImageFixture(t)
		_, err := f.svc.Upload(context.Background(), nil, Upload{Filename: "a.jpg"})
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("blank filename", func(t *testing.T) {
		f := newImageFixture(t)
		_, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "  "})
		assert.ErrorIs(t, err, common.ErrorWrongFormat)
		assert.Empty(t, f.store.puts)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newImageFixture(t)
		f.store.putErr = errors.New("bucket missing")
		_, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "a.jpg"})
		assert.ErrorContains(t, err, "store image")
		assert.Empty(t, f.reports.created)
		assert.Empty(t, f.fwd.jobs)
	})

	t.Run("report failure", func(t *testing.T) {
		f := newImageFixture(t)
		f.reports.createErr = errors.New("db down")
		_, err := f.svc.Upload(context.Background(), alice, Upload{Filename: "a.jpg"})
		assert.ErrorContains(t, err, "create report")
		assert.Empty(t, f.fwd.jobs)
	})
}

func TestReports(t *testing.T) {
	f := newImageFixture(t)
	f.reports.listOut = []models.Report{{ID: 3, Filename: "a.jpg", Status: models.ReportDone}}

	got, err := f.svc.Reports(context.Background(), alice, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []int64{7, DefaultReportLimit}, f.reports.listArgs)

	_, err = f.svc.Reports(context.Background(), alice, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 10}, f.reports.listArgs)

	_, err = f.svc.Reports(context.Background(), nil, 10)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Zero(t, f.reports.recentLimit)
}

func TestReports_ScopeFollowsRole(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		wantErr    error
		wantRecent bool
		wantOwn    bool
	}{
		{name: "data scientist sees every report", role: models.RoleDataScientist, wantRecent: true},
		{name: "admin sees every report", role: models.RoleAdmin, wantRecent: true},
		{name: "shift lead sees own uploads", role: models.RoleShiftLead, wantOwn: true},
		{name: "unknown role is forbidden", role: models.Role("guest"), wantErr: common.ErrorForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImageFixture(t)
			f.reports.listOut = []models.Report{{ID: 1}}

			got, err := f.svc.Reports(context.Background(), &Principal{ID: 3, Login: "u", Role: tt.role}, 5)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, f.reports.listArgs)
				assert.Zero(t, f.reports.recentLimit)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, 1)
			if tt.wantRecent {
				assert.Equal(t, 5, f.reports.recentLimit)
				assert.Nil(t, f.reports.listArgs)
			}
			if tt.wantOwn {
				assert.Equal(t, []int64{3, 5}, f.reports.listArgs)
				assert.Zero(t, f.reports.recentLimit)
			}
		})
	}
}
