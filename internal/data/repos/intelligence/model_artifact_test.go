package intelligence

import (
	"context"
	"testing"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestModelArtifactRepoVersions(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewModelArtifactRepo(db, testutil.Logger(t))

	if got, err := repo.GetActive(dbc, "readiness"); err != nil || got != nil {
		t.Fatalf("GetActive missing: want=nil,nil got=%v,%v", got, err)
	}

	for i := 0; i < 3; i++ {
		row := &types.ModelArtifact{
			ModelKey:     "readiness",
			ArtifactJSON: datatypes.JSON([]byte(`{"weights":[1]}`)),
			MetadataJSON: datatypes.JSON([]byte(`{}`)),
		}
		if err := repo.SaveVersion(dbc, row); err != nil {
			t.Fatalf("SaveVersion %d: %v", i, err)
		}
		if row.Version != i+1 {
			t.Fatalf("SaveVersion version: want=%d got=%d", i+1, row.Version)
		}
	}

	active, err := repo.GetActive(dbc, "readiness")
	if err != nil || active == nil {
		t.Fatalf("GetActive: err=%v row=%v", err, active)
	}
	if active.Version != 3 {
		t.Fatalf("GetActive version: want=3 got=%d", active.Version)
	}

	versions, err := repo.ListVersions(dbc, "readiness")
	if err != nil || len(versions) != 3 {
		t.Fatalf("ListVersions: err=%v len=%d", err, len(versions))
	}
	activeCount := 0
	for _, v := range versions {
		if v.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("active versions: want=1 got=%d", activeCount)
	}

	if err := repo.SaveVersion(dbc, &types.ModelArtifact{}); err == nil {
		t.Fatalf("SaveVersion empty key: want error")
	}
}
