package service

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"anoa.com/wikigradebook/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

// MeiliSearchService maintains the assignment search index used by the
// instructor management views.
type MeiliSearchService interface {
	IndexAssignment(assignment *model.Assignment) error
	DeleteAssignment(id uint) error
	GenerateSearchToken(userRole string) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	masterKey := os.Getenv("MEILI_MASTER_KEY")
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &meiliSearchService{
		client:    client,
		masterKey: masterKey,
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "GradebookTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign gradebook tenant tokens",
		Name:        "GradebookTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"assignments"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"enabled", "group_ids"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("assignments").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update assignments filterable attributes: %v", err)
	}

	sortableAttrs := []string{"date", "title", "value"}
	_, err = s.client.Index("assignments").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update assignments sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliAssignmentDoc struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Value    float64  `json:"value"`
	Enabled  bool     `json:"enabled"`
	Date     string   `json:"date,omitempty"`
	GroupIDs []string `json:"group_ids"`
	Groups   []string `json:"groups"`
}

func (s *meiliSearchService) IndexAssignment(assignment *model.Assignment) error {
	groupIDs := make([]string, 0, len(assignment.Groups))
	groupTitles := make([]string, 0, len(assignment.Groups))
	for _, g := range assignment.Groups {
		groupIDs = append(groupIDs, strconv.FormatUint(uint64(g.ID), 10))
		groupTitles = append(groupTitles, g.Title)
	}

	doc := meiliAssignmentDoc{
		ID:       strconv.FormatUint(uint64(assignment.ID), 10),
		Title:    assignment.Title,
		Value:    assignment.Value,
		Enabled:  assignment.Enabled,
		GroupIDs: groupIDs,
		Groups:   groupTitles,
	}
	if assignment.Date != nil {
		doc.Date = *assignment.Date
	}

	task, err := s.client.Index("assignments").AddDocuments([]meiliAssignmentDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed assignment %d, task id: %d", assignment.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteAssignment(id uint) error {
	_, err := s.client.Index("assignments").DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) GenerateSearchToken(userRole string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		"assignments": map[string]any{},
	}

	// Students only see enabled assignments; instructors search everything.
	switch userRole {
	case "admin", "instructor":
		searchRules["assignments"] = map[string]any{"filter": nil}
	default:
		searchRules["assignments"] = map[string]any{
			"filter": "enabled = true",
		}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
