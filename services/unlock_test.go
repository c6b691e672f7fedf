package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-course-backend/models"
)

func videoWithTest(questions int) models.Video {
	v := models.Video{ID: uuid.New()}
	if questions >= 0 {
		v.Test = &models.Test{ID: uuid.New(), VideoID: v.ID}
		for i := 0; i < questions; i++ {
			v.Test.Questions = append(v.Test.Questions, models.Question{ID: uuid.New()})
		}
	}
	return v
}

func flags(out []VideoWithUnlock) []bool {
	got := make([]bool, len(out))
	for i, v := range out {
		got[i] = v.IsUnlocked
	}
	return got
}

func assertFlags(t *testing.T, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unlocks: want=%v got=%v", want, got)
		}
	}
}

func TestComputeUnlocksVideoWithoutTestDoesNotGate(t *testing.T) {
	videos := []models.Video{videoWithTest(-1), videoWithTest(2), videoWithTest(2)}
	progress := map[uuid.UUID]models.Progress{
		videos[0].ID: {VideoID: videos[0].ID, Completed: true},
	}

	assertFlags(t, flags(ComputeUnlocks(videos, progress)), []bool{true, true, false})
}

func TestComputeUnlocksFirstVideoAlwaysUnlocked(t *testing.T) {
	videos := []models.Video{videoWithTest(3), videoWithTest(1)}

	assertFlags(t, flags(ComputeUnlocks(videos, nil)), []bool{true, false})

	progress := map[uuid.UUID]models.Progress{
		videos[0].ID: {VideoID: videos[0].ID, Completed: false, TestCompleted: true},
	}
	assertFlags(t, flags(ComputeUnlocks(videos, progress)), []bool{true, false})
}

func TestComputeUnlocksRequiresPassedTest(t *testing.T) {
	videos := []models.Video{videoWithTest(1), videoWithTest(1), videoWithTest(0), videoWithTest(-1)}
	progress := map[uuid.UUID]models.Progress{
		videos[0].ID: {Completed: true, TestCompleted: false},
	}
	assertFlags(t, flags(ComputeUnlocks(videos, progress)), []bool{true, false, false, false})

	progress[videos[0].ID] = models.Progress{Completed: true, TestCompleted: true}
	progress[videos[1].ID] = models.Progress{Completed: true, TestCompleted: true}
	// a test without questions cannot be passed, so watching is enough
	progress[videos[2].ID] = models.Progress{Completed: true}
	assertFlags(t, flags(ComputeUnlocks(videos, progress)), []bool{true, true, true, true})
}

func TestComputeUnlocksKeepsOrderAndInput(t *testing.T) {
	videos := []models.Video{videoWithTest(-1), videoWithTest(-1)}
	ids := []uuid.UUID{videos[0].ID, videos[1].ID}
	progress := map[uuid.UUID]models.Progress{}

	out := ComputeUnlocks(videos, progress)
	for i := range out {
		if out[i].ID != ids[i] {
			t.Fatalf("order changed at %d", i)
		}
	}
	if len(progress) != 0 {
		t.Fatalf("progress map was modified: %v", progress)
	}
	if len(ComputeUnlocks(nil, nil)) != 0 {
		t.Fatalf("empty input must give empty output")
	}
}
