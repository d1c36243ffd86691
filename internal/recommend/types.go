// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"context"
	"time"
)

// InteractionType categorizes a user-product event.
type InteractionType string

const (
	// InteractionView is a product page view.
	InteractionView InteractionType = "view"

	// InteractionClick is a click on a product tile or link.
	InteractionClick InteractionType = "click"

	// InteractionAddToCart is a product added to the shopping cart.
	InteractionAddToCart InteractionType = "add_to_cart"

	// InteractionWishlist is a product saved to a wishlist.
	InteractionWishlist InteractionType = "wishlist"

	// InteractionPurchase is a completed purchase.
	InteractionPurchase InteractionType = "purchase"

	// InteractionReview is a submitted product review.
	InteractionReview InteractionType = "review"

	// InteractionSearch is a search that surfaced the product.
	InteractionSearch InteractionType = "search"
)

// DefaultInteractionWeight is applied to unrecognized interaction types.
const DefaultInteractionWeight = 1.0

var interactionWeights = map[InteractionType]float64{
	InteractionView:      1,
	InteractionClick:     2,
	InteractionAddToCart: 5,
	InteractionWishlist:  3,
	InteractionPurchase:  10,
	InteractionReview:    4,
	InteractionSearch:    1.5,
}

// Weight returns the aggregation weight of the interaction type.
func (t InteractionType) Weight() float64 {
	if w, ok := interactionWeights[t]; ok {
		return w
	}
	return DefaultInteractionWeight
}

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	_, ok := interactionWeights[t]
	return ok
}

// InteractionTypes returns the known interaction types in a fixed order.
func InteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionView,
		InteractionClick,
		InteractionAddToCart,
		InteractionWishlist,
		InteractionPurchase,
		InteractionReview,
		InteractionSearch,
	}
}

// InteractionMetadata carries optional event details.
type InteractionMetadata struct {
	SessionID   string    `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	Duration    float64   `json:"duration,omitempty" bson:"duration,omitempty"`
	SearchQuery string    `json:"searchQuery,omitempty" bson:"searchQuery,omitempty"`
	Rating      float64   `json:"rating,omitempty" bson:"rating,omitempty"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Price       float64   `json:"price,omitempty" bson:"price,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// DeviceInfo describes the client that produced an interaction.
type DeviceInfo struct {
	UserAgent string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty" bson:"platform,omitempty"`
	Browser   string `json:"browser,omitempty" bson:"browser,omitempty"`
}

// InteractionContext describes where in the storefront an interaction happened.
type InteractionContext struct {
	Referrer             string `json:"referrer,omitempty" bson:"referrer,omitempty"`
	PageURL              string `json:"pageUrl,omitempty" bson:"pageUrl,omitempty"`
	RecommendationSource string `json:"recommendationSource,omitempty" bson:"recommendationSource,omitempty"`
}

// Interaction is a single weighted user-product event.
// Interactions are immutable once stored.
type Interaction struct {
	ID         string              `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string              `json:"userId" bson:"userId"`
	ProductID  string              `json:"productId" bson:"productId"`
	Type       InteractionType     `json:"interactionType" bson:"interactionType"`
	Weight     float64             `json:"interactionWeight" bson:"interactionWeight"`
	Metadata   InteractionMetadata `json:"metadata" bson:"metadata"`
	DeviceInfo DeviceInfo          `json:"deviceInfo" bson:"deviceInfo"`
	Context    InteractionContext  `json:"context" bson:"context"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
}

// EffectiveWeight returns the stored weight, or the type weight for records
// persisted without one.
func (i *Interaction) EffectiveWeight() float64 {
	if i.Weight > 0 {
		return i.Weight
	}
	return i.Type.Weight()
}

// SimilarityType identifies how a similarity score was derived.
type SimilarityType string

const (
	SimilarityContent       SimilarityType = "content"
	SimilarityCollaborative SimilarityType = "collaborative"
	SimilarityHybrid        SimilarityType = "hybrid"
)

// PriceRange is a coarse price bucket stored with similarity metadata.
type PriceRange string

const (
	PriceBudget  PriceRange = "budget"
	PriceMid     PriceRange = "mid"
	PricePremium PriceRange = "premium"
	PriceLuxury  PriceRange = "luxury"
)

// PriceRangeFor buckets a price: <50 budget, <200 mid, <500 premium, else luxury.
func PriceRangeFor(price float64) PriceRange {
	switch {
	case price < 50:
		return PriceBudget
	case price < 200:
		return PriceMid
	case price < 500:
		return PricePremium
	default:
		return PriceLuxury
	}
}

// SimilarProduct is one entry of a similarity list.
type SimilarProduct struct {
	ProductID       string         `json:"productId" bson:"productId"`
	SimilarityScore float64        `json:"similarityScore" bson:"similarityScore"`
	SimilarityType  SimilarityType `json:"similarityType" bson:"similarityType"`
}

// SimilarityMetadata is product metadata captured when similarities were computed.
type SimilarityMetadata struct {
	Category   string     `json:"category,omitempty" bson:"category,omitempty"`
	Tags       []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	PriceRange PriceRange `json:"priceRange,omitempty" bson:"priceRange,omitempty"`
}

// SimilarityRecord is the precomputed similar-products list of one product.
// SimilarProducts is sorted by descending SimilarityScore and is always
// replaced as a whole.
type SimilarityRecord struct {
	ProductID       string             `json:"productId" bson:"productId"`
	SimilarProducts []SimilarProduct   `json:"similarProducts" bson:"similarProducts"`
	LastUpdated     time.Time          `json:"lastUpdated" bson:"lastUpdated"`
	Metadata        SimilarityMetadata `json:"metadata" bson:"metadata"`
}

// ProductData is the catalog information used to rebuild a similarity list.
type ProductData struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Price    float64  `json:"price"`
}

// Reason explains why a product was recommended.
type Reason string

const (
	ReasonTrending                 Reason = "trending"
	ReasonUsersAlsoLiked           Reason = "users_also_liked"
	ReasonSimilarProducts          Reason = "similar_products"
	ReasonFrequentlyBoughtTogether Reason = "frequently_bought_together"
)

// PopularityStats reports per-type counts behind a trending recommendation.
type PopularityStats struct {
	Views     int `json:"views"`
	Purchases int `json:"purchases"`
	CartAdds  int `json:"cartAdds"`
}

// Recommendation is a single ranked product.
type Recommendation struct {
	ProductID string           `json:"productId"`
	Score     float64          `json:"score"`
	Reason    Reason           `json:"reason"`
	Category  string           `json:"category,omitempty"`
	Stats     *PopularityStats `json:"stats,omitempty"`
}

// Algorithm names accepted by GetPersonalizedRecommendations.
const (
	AlgorithmCollaborative = "collaborative"
	AlgorithmContent       = "content"
	AlgorithmHybrid        = "hybrid"
)

// Algorithm produces personalized recommendations for a user.
// An error means the engine should fall back to popularity.
type Algorithm interface {
	// Name is the identifier used in requests and cache keys.
	Name() string

	// Recommend returns at most limit ranked products for the user.
	Recommend(ctx context.Context, userID string, limit int) ([]Recommendation, error)
}

// PopularityRanker ranks trending products over a trailing window of days.
type PopularityRanker interface {
	Popular(ctx context.Context, limit, days int) ([]Recommendation, error)
}

// ProductRanker ranks products related to a single anchor product.
type ProductRanker interface {
	Related(ctx context.Context, productID string, limit int) ([]Recommendation, error)
}

// SeedRanker ranks products similar to a set of seed products.
type SeedRanker interface {
	RankSeeds(ctx context.Context, seeds []string, limit int) ([]Recommendation, error)
}

// SimilarityCalculator rebuilds and stores the similarity list of a product.
type SimilarityCalculator interface {
	Calculate(ctx context.Context, productID string, data ProductData) (SimilarityRecord, error)
}

// Options controls a personalized recommendation request.
type Options struct {
	// Limit is the maximum number of results. Zero uses the configured default.
	Limit int

	// Algorithm selects collaborative, content or hybrid. Empty or unknown
	// names use hybrid.
	Algorithm string

	// ExcludeProducts are removed from the result.
	ExcludeProducts []string

	// CategoryFilter keeps only products of this category when set.
	CategoryFilter string
}

// BatchFailure describes one rejected item of a batch.
type BatchFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult tallies a batch tracking call.
type BatchResult struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Failures   []BatchFailure `json:"failures,omitempty"`
}

// Stats summarizes interaction activity over a trailing window.
type Stats struct {
	Days           int                     `json:"days"`
	Since          time.Time               `json:"since"`
	Total          int                     `json:"total"`
	ByType         map[InteractionType]int `json:"byType"`
	UniqueUsers    int                     `json:"uniqueUsers"`
	UniqueProducts int                     `json:"uniqueProducts"`
}

// Metrics contains engine counters.
type Metrics struct {
	TotalRequests       int64 `json:"total_requests"`
	CacheHits           int64 `json:"cache_hits"`
	CacheMisses         int64 `json:"cache_misses"`
	Fallbacks           int64 `json:"fallbacks"`
	TrackedInteractions int64 `json:"tracked_interactions"`
	TrackFailures       int64 `json:"track_failures"`
	SimilarityUpdates   int64 `json:"similarity_updates"`
}
