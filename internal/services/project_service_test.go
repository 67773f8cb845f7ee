package services_test

import (
	"strings"
	"testing"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/status"
)

func TestCreateProjectStartsDraft(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)

	project := seedProject(t, db, user)
	if project.Status != status.Draft {
		t.Errorf("status = %s, want draft", project.Status)
	}
	if !strings.HasPrefix(project.ProjectNumber, "PRJ-") {
		t.Errorf("project number = %q", project.ProjectNumber)
	}
}

func TestCreateProjectRequiresClient(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)

	_, err := services.CreateProject(db, services.ProjectInput{
		ProjectName: "Orphan",
		ClientID:    42,
	}, user.ID)
	if err == nil {
		t.Fatal("expected missing client to be rejected")
	}
	if code := apiStatus(t, err); code != 404 {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestUpdateProjectStatusWritesComment(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, user)

	updated, err := services.UpdateProjectStatus(db, project.ID, status.EstimationPrepared, user.ID)
	if err != nil {
		t.Fatalf("UpdateProjectStatus: %v", err)
	}
	if updated.Status != status.EstimationPrepared {
		t.Errorf("status = %s", updated.Status)
	}

	comments, err := services.ListProjectComments(db, project.ID)
	if err != nil {
		t.Fatalf("ListProjectComments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
	if !strings.Contains(comments[0].Text, "draft") || !strings.Contains(comments[0].Text, "estimation_prepared") {
		t.Errorf("comment %q should name both statuses", comments[0].Text)
	}
}

func TestUpdateProjectStatusRejectsIllegalMove(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, user)

	_, err := services.UpdateProjectStatus(db, project.ID, status.PaymentReceived, user.ID)
	if err == nil {
		t.Fatal("expected illegal transition to be rejected")
	}
	if code := apiStatus(t, err); code != 400 {
		t.Errorf("status = %d, want 400", code)
	}

	// Nothing written on failure: status untouched, no comment.
	reloaded, err := services.GetProject(db, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != status.Draft {
		t.Errorf("status changed to %s on failed transition", reloaded.Status)
	}
	comments, _ := services.ListProjectComments(db, project.ID)
	if len(comments) != 0 {
		t.Errorf("comments = %d, want 0", len(comments))
	}
}

func TestUpdateProjectProgressAdvancesStatus(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, user)

	db.Model(&models.Project{}).Where("id = ?", project.ID).Update("status", status.LPOReceived)

	updated, err := services.UpdateProjectProgress(db, project.ID, 0, user.ID)
	if err != nil {
		t.Fatalf("UpdateProjectProgress: %v", err)
	}
	if updated.Status != status.WorkStarted {
		t.Errorf("status = %s, want work_started", updated.Status)
	}

	updated, err = services.UpdateProjectProgress(db, project.ID, 40, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != status.InProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}

	updated, err = services.UpdateProjectProgress(db, project.ID, 100, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != status.WorkCompleted {
		t.Errorf("status = %s, want work_completed", updated.Status)
	}

	// Each update leaves a progress snapshot in the audit trail.
	comments, err := services.ListProjectComments(db, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 3 {
		t.Fatalf("comments = %d, want 3", len(comments))
	}
	if comments[0].Progress == nil || *comments[0].Progress != 100 {
		t.Error("latest comment should snapshot progress 100")
	}
}

func TestUpdateProjectProgressRange(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, user)

	if _, err := services.UpdateProjectProgress(db, project.ID, -1, user.ID); err == nil {
		t.Error("expected negative progress to be rejected")
	}
	if _, err := services.UpdateProjectProgress(db, project.ID, 101, user.ID); err == nil {
		t.Error("expected >100 progress to be rejected")
	}
}

func TestAssignProject(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, models.RoleAdmin)
	engineer := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, admin)

	updated, err := services.AssignProject(db, nil, project.ID, engineer.ID, admin.ID)
	if err != nil {
		t.Fatalf("AssignProject: %v", err)
	}
	if updated.AssignedToID == nil || *updated.AssignedToID != engineer.ID {
		t.Error("engineer not assigned")
	}
}

func TestDeleteProjectDraftOnly(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, user)

	if _, err := services.UpdateProjectStatus(db, project.ID, status.EstimationPrepared, user.ID); err != nil {
		t.Fatal(err)
	}
	err := services.DeleteProject(db, project.ID)
	if err == nil {
		t.Fatal("expected non-draft delete to be rejected")
	}
	if !strings.Contains(err.Error(), "estimation_prepared") {
		t.Errorf("error %q should name the current status", err.Error())
	}

	fresh := seedProject(t, db, user)
	if err := services.DeleteProject(db, fresh.ID); err != nil {
		t.Fatalf("draft delete failed: %v", err)
	}
}

func TestListProjectsStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleAdmin)
	a := seedProject(t, db, user)
	seedProject(t, db, user)

	if _, err := services.UpdateProjectStatus(db, a.ID, status.EstimationPrepared, user.ID); err != nil {
		t.Fatal(err)
	}

	projects, total, err := services.ListProjects(db, 1, 10, "", status.EstimationPrepared)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 1 || len(projects) != 1 {
		t.Fatalf("total = %d len = %d, want 1 and 1", total, len(projects))
	}

	if _, _, err := services.ListProjects(db, 1, 10, "", "bogus"); err == nil {
		t.Error("expected invalid status filter to be rejected")
	}
}
