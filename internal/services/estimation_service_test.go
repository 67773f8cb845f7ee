package services_test

import (
	"strings"
	"testing"

	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/status"
	"github.com/nimbusworks/opsdesk/internal/types"
)

func sampleEstimationInput() services.EstimationInput {
	return services.EstimationInput{
		Materials: types.FlexList[services.MaterialInput]{
			{Description: "Ducting", Quantity: 2, UnitPrice: 50},
		},
		Labour: types.FlexList[services.LabourInput]{
			{Designation: "Fitter", Days: 3, Price: 20},
		},
		QuotationAmount:  200,
		CommissionAmount: 10,
	}
}

func TestCreateEstimation(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, user)

	est, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), user.ID)
	if err != nil {
		t.Fatalf("CreateEstimation: %v", err)
	}
	if !strings.HasPrefix(est.EstimationNumber, "EST-") {
		t.Errorf("estimation number = %q", est.EstimationNumber)
	}
	if est.EstimatedAmount != 160 || est.Profit != 30 {
		t.Errorf("amount = %v profit = %v, want 160 and 30", est.EstimatedAmount, est.Profit)
	}

	// Draft project moves to estimation_prepared.
	reloaded, err := services.GetProject(db, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != status.EstimationPrepared {
		t.Errorf("project status = %s, want estimation_prepared", reloaded.Status)
	}
}

func TestCreateEstimationRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, user)

	if _, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), user.ID); err != nil {
		t.Fatal(err)
	}
	_, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), user.ID)
	if err == nil {
		t.Fatal("expected duplicate estimation to be rejected")
	}
	if !strings.Contains(err.Error(), "already has an estimation") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestUpdateEstimationResetsCheckedFlag(t *testing.T) {
	db := setupTestDB(t)
	engineer := seedUser(t, db, models.RoleEngineer)
	admin := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, engineer)

	est, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), engineer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := services.CheckEstimation(db, nil, est.ID, admin, ""); err != nil {
		t.Fatal(err)
	}

	in := sampleEstimationInput()
	in.QuotationAmount = 300
	updated, err := services.UpdateEstimation(db, est.ID, in)
	if err != nil {
		t.Fatalf("UpdateEstimation: %v", err)
	}
	if updated.IsChecked {
		t.Error("editing a checked estimation should reset the checked flag")
	}
	if updated.Profit != 130 {
		t.Errorf("profit = %v, want 130 (300 - 160 - 10)", updated.Profit)
	}
}

func TestApprovalRequiresCheck(t *testing.T) {
	db := setupTestDB(t)
	engineer := seedUser(t, db, models.RoleEngineer)
	admin := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, engineer)

	est, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), engineer.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = services.ApproveEstimation(db, est.ID, admin)
	if err == nil {
		t.Fatal("expected unchecked approval to be rejected")
	}
	if !strings.Contains(err.Error(), "checked before approval") {
		t.Errorf("error = %q", err.Error())
	}

	if _, err := services.CheckEstimation(db, nil, est.ID, admin, ""); err != nil {
		t.Fatal(err)
	}
	approved, err := services.ApproveEstimation(db, est.ID, admin)
	if err != nil {
		t.Fatalf("ApproveEstimation: %v", err)
	}
	if !approved.IsApproved || approved.ApprovedByID == nil {
		t.Error("approval flags not set")
	}

	if _, err := services.ApproveEstimation(db, est.ID, admin); err == nil {
		t.Error("expected re-approval to be rejected")
	}
}

func TestApprovedEstimationIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	engineer := seedUser(t, db, models.RoleEngineer)
	admin := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, engineer)

	est, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), engineer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := services.CheckEstimation(db, nil, est.ID, admin, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := services.ApproveEstimation(db, est.ID, admin); err != nil {
		t.Fatal(err)
	}

	if _, err := services.UpdateEstimation(db, est.ID, sampleEstimationInput()); err == nil {
		t.Error("expected update of approved estimation to be rejected")
	}
	if _, err := services.RejectEstimation(db, est.ID, admin); err == nil {
		t.Error("expected rejection of approved estimation to be rejected")
	}
	if err := services.DeleteEstimation(db, est.ID); err == nil {
		t.Error("expected deletion of approved estimation to be rejected")
	}
}

func TestRejectEstimationClearsGates(t *testing.T) {
	db := setupTestDB(t)
	engineer := seedUser(t, db, models.RoleEngineer)
	admin := seedUser(t, db, models.RoleAdmin)
	project := seedProject(t, db, engineer)

	est, err := services.CreateEstimation(db, project.ID, sampleEstimationInput(), engineer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := services.CheckEstimation(db, nil, est.ID, admin, ""); err != nil {
		t.Fatal(err)
	}

	rejected, err := services.RejectEstimation(db, est.ID, admin)
	if err != nil {
		t.Fatalf("RejectEstimation: %v", err)
	}
	if rejected.IsChecked || rejected.CheckedByID != nil {
		t.Error("rejection should clear the checked gate")
	}

	// Check, approval, and rejection all leave audit comments.
	comments, err := services.ListProjectComments(db, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	var actions []string
	for _, c := range comments {
		actions = append(actions, c.ActionType)
	}
	want := map[string]bool{models.ActionCheck: false, models.ActionRejection: false}
	for _, a := range actions {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for action, seen := range want {
		if !seen {
			t.Errorf("missing %s comment, got %v", action, actions)
		}
	}
}

func TestFlexInputsSingleObjectAndStringNumbers(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, models.RoleEngineer)
	project := seedProject(t, db, user)

	// Form clients send a bare object and string numerics.
	var in services.EstimationInput
	payload := `{"materials":{"description":"Cable","quantity":"2","unitPrice":"50"},"quotationAmount":"200","commissionAmount":"10"}`
	if err := jsonUnmarshal(payload, &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	est, err := services.CreateEstimation(db, project.ID, in, user.ID)
	if err != nil {
		t.Fatalf("CreateEstimation: %v", err)
	}
	if est.EstimatedAmount != 100 || est.Profit != 90 {
		t.Errorf("amount = %v profit = %v, want 100 and 90", est.EstimatedAmount, est.Profit)
	}
}
