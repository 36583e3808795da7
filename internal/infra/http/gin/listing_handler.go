package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gardiens/internal/app/dto"
	listingapp "gardiens/internal/app/handlers/listings"
	"gardiens/internal/app/queries"
)

// ListingHandler serves stateless listing reads.
type ListingHandler struct {
	Queries queries.Bus
}

// Search fetches the caller's announcements and filters them by q, care_types, start and end.
func (h ListingHandler) Search(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	query := listingapp.SearchQuery{
		Credential: credentialOf(c),
		Query:      c.Query("q"),
		CareTypes:  careTypesParam(c),
		Start:      c.Query("start"),
		End:        c.Query("end"),
		Status:     c.Query("status"),
	}
	result, err := queries.Ask[listingapp.SearchQuery, dto.SearchResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) CareTypes(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "listing handler unavailable"})
		return
	}
	result, err := queries.Ask[listingapp.CareTypesQuery, dto.CareTypes](c.Request.Context(), h.Queries, listingapp.CareTypesQuery{Credential: credentialOf(c)})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

// careTypesParam accepts care_types=a,b as well as repeated care_types parameters.
func careTypesParam(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("care_types") {
		out = append(out, splitCSV(raw)...)
	}
	return out
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
