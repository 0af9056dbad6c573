package allocation

import (
	"math"
	"strings"
	"testing"
)

func TestDetailRows(t *testing.T) {
	students := []Student{{ID: "stu1"}, {ID: "stu2"}}
	projects := []Project{{ID: "P1"}}

	t.Run("resolved row keeps its rank", func(t *testing.T) {
		rows, err := DetailRows([]Assignment{{StudentID: "stu1", ProjectID: "P1", Rank: 3}}, students, projects)
		if err != nil {
			t.Fatalf("DetailRows() error = %v", err)
		}
		if rows[0].ProjectID != "P1" || rows[0].StudentRank != 3 {
			t.Errorf("row = %+v, want P1 with rank 3", rows[0])
		}
	})

	t.Run("sentinel project yields placeholder regardless of rank", func(t *testing.T) {
		rows, err := DetailRows([]Assignment{{StudentID: "stu2", ProjectID: "0", Rank: 7}}, students, projects)
		if err != nil {
			t.Fatalf("DetailRows() error = %v", err)
		}
		if rows[0].ProjectID != "-" {
			t.Errorf("project id = %q, want \"-\"", rows[0].ProjectID)
		}
		if !math.IsNaN(rows[0].StudentRank) {
			t.Errorf("rank = %v, want NaN", rows[0].StudentRank)
		}
	})

	t.Run("unknown student is a hard error", func(t *testing.T) {
		_, err := DetailRows([]Assignment{{StudentID: "ghost", ProjectID: "P1", Rank: 1}}, students, projects)
		if err == nil || !strings.Contains(err.Error(), "student not found") {
			t.Errorf("error = %v, want student not found", err)
		}
	})

	t.Run("unknown project is a hard error naming the id", func(t *testing.T) {
		_, err := DetailRows([]Assignment{{StudentID: "stu1", ProjectID: "P9", Rank: 1}}, students, projects)
		if err == nil || !strings.Contains(err.Error(), "project not found: P9") {
			t.Errorf("error = %v, want project not found: P9", err)
		}
	})
}
