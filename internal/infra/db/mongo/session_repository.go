package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "gardiens/internal/domain/listings"
	"gardiens/internal/domain/navigation"
	domainsession "gardiens/internal/domain/session"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// SessionRepository stores one document per session with optimistic versioning.
type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection("app_sessions")}
}

func (r *SessionRepository) ByID(ctx context.Context, id domainsession.ID) (*domainsession.Session, error) {
	var doc sessionDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainsession.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SessionRepository) Save(ctx context.Context, s *domainsession.Session) error {
	if s == nil || s.ID == "" {
		return domainsession.ErrIDRequired
	}
	doc := newSessionDocument(s)
	filter := bson.M{"_id": doc.ID, "version": s.Version}
	doc.Version = s.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	s.Version = doc.Version
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id domainsession.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainsession.ErrNotFound
	}
	return nil
}

type sessionDocument struct {
	ID          string            `bson:"_id"`
	Credential  string            `bson:"credential"`
	Status      string            `bson:"status"`
	Pages       []string          `bson:"pages"`
	Criteria    criteriaDocument  `bson:"criteria"`
	Listings    []listingDocument `bson:"listings"`
	RefreshedAt time.Time         `bson:"refreshed_at"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
	Version     int64             `bson:"version"`
}

type criteriaDocument struct {
	Query     string   `bson:"query"`
	CareTypes []string `bson:"care_types"`
	HasDates  bool     `bson:"has_dates"`
	Start     string   `bson:"start"`
	End       string   `bson:"end"`
}

type listingDocument struct {
	ID          string    `bson:"id"`
	Owner       string    `bson:"owner"`
	Title       string    `bson:"title"`
	Location    string    `bson:"location"`
	Description string    `bson:"description"`
	CareType    string    `bson:"care_type"`
	StartDate   string    `bson:"start_date"`
	EndDate     string    `bson:"end_date"`
	PriceCents  int64     `bson:"price_cents"`
	Images      []string  `bson:"images"`
	Favorite    bool      `bson:"favorite"`
	Status      string    `bson:"status"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newSessionDocument(s *domainsession.Session) sessionDocument {
	pages := s.Nav.Pages()
	doc := sessionDocument{
		ID:          string(s.ID),
		Credential:  s.Credential,
		Status:      string(s.Status),
		Pages:       make([]string, 0, len(pages)),
		Listings:    make([]listingDocument, 0, len(s.Listings)),
		RefreshedAt: s.RefreshedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Criteria: criteriaDocument{
			Query:     s.Criteria.Query,
			CareTypes: append([]string(nil), s.Criteria.CareTypes...),
		},
	}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, string(p))
	}
	if s.Criteria.Dates != nil {
		doc.Criteria.HasDates = true
		doc.Criteria.Start = s.Criteria.Dates.Start
		doc.Criteria.End = s.Criteria.Dates.End
	}
	for _, l := range s.Listings {
		if l == nil {
			continue
		}
		doc.Listings = append(doc.Listings, listingDocument{
			ID:          string(l.ID),
			Owner:       string(l.Owner),
			Title:       l.Title,
			Location:    l.Location,
			Description: l.Description,
			CareType:    l.CareType,
			StartDate:   l.StartDate,
			EndDate:     l.EndDate,
			PriceCents:  l.PriceCents,
			Images:      append([]string(nil), l.Images...),
			Favorite:    l.Favorite,
			Status:      string(l.Status),
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return doc
}

func (d sessionDocument) toAggregate() *domainsession.Session {
	pages := make([]navigation.Page, 0, len(d.Pages))
	for _, p := range d.Pages {
		pages = append(pages, navigation.Page(p))
	}
	s := &domainsession.Session{
		ID:          domainsession.ID(d.ID),
		Credential:  d.Credential,
		Status:      domainlistings.Status(d.Status),
		Nav:         navigation.FromPages(pages),
		RefreshedAt: d.RefreshedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Version:     d.Version,
		Criteria: domainlistings.Criteria{
			Query:     d.Criteria.Query,
			CareTypes: append([]string(nil), d.Criteria.CareTypes...),
		},
	}
	if d.Criteria.HasDates {
		s.Criteria.Dates = &domainlistings.DateRange{Start: d.Criteria.Start, End: d.Criteria.End}
	}
	s.Listings = make([]*domainlistings.Listing, 0, len(d.Listings))
	for _, l := range d.Listings {
		s.Listings = append(s.Listings, &domainlistings.Listing{
			ID:          domainlistings.ListingID(l.ID),
			Owner:       domainlistings.OwnerID(l.Owner),
			Title:       l.Title,
			Location:    l.Location,
			Description: l.Description,
			CareType:    l.CareType,
			StartDate:   l.StartDate,
			EndDate:     l.EndDate,
			PriceCents:  l.PriceCents,
			Images:      append([]string(nil), l.Images...),
			Favorite:    l.Favorite,
			Status:      domainlistings.Status(l.Status),
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return s
}

var _ domainsession.Repository = (*SessionRepository)(nil)
