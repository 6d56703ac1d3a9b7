package properties

import (
	"net/http"
	"testing"

	"qota/pkg/model"
	"qota/test/common"
)

func createPropertyRequest(name string) *model.CreatePropertyRequest {
	return &model.CreatePropertyRequest{
		Name: name,
		Type: model.PropertyTypeHouse,
	}
}

func TestCreateAndGetProperty(t *testing.T) {
	memberID := common.UniqueMemberID("owner")
	propertyClient := common.PropertyClient(t, memberID, "Ana Souza")

	resp, err := propertyClient.Create(createPropertyRequest("Casa da Serra"))
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %s", resp.ToString())
	}

	created, err := propertyClient.DecodeCreated(resp)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("expected created property to have an id")
	}

	resp, err = propertyClient.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %s", resp.ToString())
	}

	property, err := propertyClient.DecodeProperty(resp)
	if err != nil {
		t.Fatal(err)
	}
	if property.Name != "Casa da Serra" {
		t.Errorf("expected name %q, got %q", "Casa da Serra", property.Name)
	}
	if property.TotalFractions < 1 {
		t.Errorf("expected defaulted fractions, got %d", property.TotalFractions)
	}
}

func TestGetProperty_NonMemberForbidden(t *testing.T) {
	ownerID := common.UniqueMemberID("owner")
	ownerClient := common.PropertyClient(t, ownerID, "Ana Souza")

	resp, err := ownerClient.Create(createPropertyRequest("Sítio do Lago"))
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %s", resp.ToString())
	}
	created, err := ownerClient.DecodeCreated(resp)
	if err != nil {
		t.Fatal(err)
	}

	outsiderClient := common.PropertyClient(t, common.UniqueMemberID("outsider"), "Rui Lima")
	resp, err = outsiderClient.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %s", resp.ToString())
	}
}

func TestGetMine_ListsOwnedProperties(t *testing.T) {
	memberID := common.UniqueMemberID("owner")
	propertyClient := common.PropertyClient(t, memberID, "Ana Souza")

	for _, name := range []string{"Casa Um", "Casa Dois"} {
		resp, err := propertyClient.Create(createPropertyRequest(name))
		if err != nil {
			t.Fatalf("create request failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %s", resp.ToString())
		}
	}

	resp, err := propertyClient.GetMine(10, 0)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %s", resp.ToString())
	}

	properties, metadata, err := propertyClient.DecodeProperties(resp)
	if err != nil {
		t.Fatal(err)
	}
	if len(properties) != 2 {
		t.Errorf("expected 2 properties, got %d", len(properties))
	}
	if metadata.TotalCount != 2 {
		t.Errorf("expected total count 2, got %d", metadata.TotalCount)
	}
}

func TestCreateProperty_ValidationFailure(t *testing.T) {
	propertyClient := common.PropertyClient(t, common.UniqueMemberID("owner"), "Ana Souza")

	resp, err := propertyClient.Create(&model.CreatePropertyRequest{
		Name: "No Type",
	})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %s", resp.ToString())
	}
}
