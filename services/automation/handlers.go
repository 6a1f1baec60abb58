package automation

import (
	"context"
	"fmt"
	"math"
	"time"

	"dreamseller-controlplane/pkg/config"
	"dreamseller-controlplane/pkg/outbound"
	"dreamseller-controlplane/services/business"
	"dreamseller-controlplane/services/catalog"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	highVelocityThreshold = 50
	lowVelocityThreshold  = 5
	priceRaiseFactor      = 1.05
	priceCutFactor        = 0.9

	adsRevenueThreshold = 5000.0
	adsBudgetShare      = 0.30

	importMarkup = 1.5
)

type HandlerDeps struct {
	fx.In
	Config     *config.Config
	Outbound   *outbound.Client
	Leads      LeadRepository
	Posts      PostRepository
	Products   catalog.Repository
	Businesses business.Repository
	Node       *snowflake.Node
}

// NewHandlers builds the full typed handler set for the engine.
func NewHandlers(d HandlerDeps) []Handler {
	return []Handler{
		&emailHandler{deps: d},
		&contentHandler{deps: d},
		&pricingHandler{deps: d},
		&adsHandler{deps: d},
		&productsHandler{deps: d},
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// emailHandler answers every unresponded new lead with the rule's template.
type emailHandler struct {
	deps HandlerDeps
}

func (h *emailHandler) Type() RuleType { return TypeEmail }

type autoResponse struct {
	Email    string `json:"email"`
	Template string `json:"template"`
}

func (h *emailHandler) Handle(ctx context.Context, rule Rule) error {
	if h.deps.Config.Automation.EmailURL == "" {
		return fmt.Errorf("no email endpoint configured")
	}

	leads, err := h.deps.Leads.ListNewUnresponded(ctx, rule.UserID)
	if err != nil {
		return err
	}

	for _, lead := range leads {
		if err := h.deps.Outbound.PostJSON(ctx, h.deps.Config.Automation.EmailURL, autoResponse{
			Email:    lead.Email,
			Template: rule.Action,
		}, nil); err != nil {
			return fmt.Errorf("auto-response to %s: %w", lead.Email, err)
		}

		if err := h.deps.Leads.MarkResponded(ctx, lead.ID, time.Now().UTC()); err != nil {
			return err
		}
	}

	zap.L().Debug("auto-responded to leads", zap.String("rule_id", rule.ID), zap.Int("leads", len(leads)))
	return nil
}

// contentHandler requests one generated article and publishes it.
type contentHandler struct {
	deps HandlerDeps
}

func (h *contentHandler) Type() RuleType { return TypeContent }

type contentRequest struct {
	Topic string `json:"topic"`
}

type contentResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *contentHandler) Handle(ctx context.Context, rule Rule) error {
	if h.deps.Config.Automation.ContentURL == "" {
		return fmt.Errorf("no content endpoint configured")
	}

	var generated contentResponse
	if err := h.deps.Outbound.PostJSON(ctx, h.deps.Config.Automation.ContentURL, contentRequest{
		Topic: rule.Action,
	}, &generated); err != nil {
		return err
	}

	if generated.Title == "" {
		return fmt.Errorf("content endpoint returned an empty article")
	}

	return h.deps.Posts.Create(ctx, &BlogPost{
		ID:            h.deps.Node.Generate().String(),
		UserID:        rule.UserID,
		Title:         generated.Title,
		Body:          generated.Body,
		Status:        PostStatusPublished,
		AutoGenerated: true,
		CreatedAt:     time.Now().UTC(),
	})
}

// pricingHandler nudges prices by recent sales velocity: fast movers up 5%,
// slow movers down 10%, everything in between untouched.
type pricingHandler struct {
	deps HandlerDeps
}

func (h *pricingHandler) Type() RuleType { return TypePricing }

func (h *pricingHandler) Handle(ctx context.Context, rule Rule) error {
	products, err := h.deps.Products.ListByUser(ctx, rule.UserID)
	if err != nil {
		return err
	}

	var adjusted int
	for _, p := range products {
		var factor float64
		switch {
		case p.SalesLast7Days > highVelocityThreshold:
			factor = priceRaiseFactor
		case p.SalesLast7Days < lowVelocityThreshold:
			factor = priceCutFactor
		default:
			continue
		}

		if err := h.deps.Products.UpdatePrice(ctx, p.ID, roundCents(p.Price*factor)); err != nil {
			return err
		}
		adjusted++
	}

	zap.L().Debug("adjusted prices", zap.String("rule_id", rule.ID), zap.Int("products", adjusted))
	return nil
}

// adsHandler launches a campaign for every business past the revenue
// threshold, budgeted at 30% of monthly revenue.
type adsHandler struct {
	deps HandlerDeps
}

func (h *adsHandler) Type() RuleType { return TypeAds }

type campaignLaunch struct {
	BusinessID string  `json:"business_id"`
	Budget     float64 `json:"budget"`
}

func (h *adsHandler) Handle(ctx context.Context, rule Rule) error {
	if h.deps.Config.Automation.AdsURL == "" {
		return fmt.Errorf("no ads endpoint configured")
	}

	businesses, err := h.deps.Businesses.ListByMinMonthlyRevenue(ctx, adsRevenueThreshold)
	if err != nil {
		return err
	}

	for _, b := range businesses {
		if b.UserID != rule.UserID {
			continue
		}

		if err := h.deps.Outbound.PostJSON(ctx, h.deps.Config.Automation.AdsURL, campaignLaunch{
			BusinessID: b.ID,
			Budget:     roundCents(b.MonthlyRevenue * adsBudgetShare),
		}, nil); err != nil {
			return fmt.Errorf("campaign for %s: %w", b.ID, err)
		}
	}

	return nil
}

// productsHandler scrapes the rule's supplier and imports the result at a
// 50% markup.
type productsHandler struct {
	deps HandlerDeps
}

func (h *productsHandler) Type() RuleType { return TypeProducts }

type scrapeRequest struct {
	Supplier string `json:"supplier"`
}

type scrapedProduct struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	SupplierID string  `json:"supplier_id"`
}

type scrapeResponse struct {
	Products []scrapedProduct `json:"products"`
}

func (h *productsHandler) Handle(ctx context.Context, rule Rule) error {
	if h.deps.Config.Automation.SupplierURL == "" {
		return fmt.Errorf("no supplier endpoint configured")
	}

	var resp scrapeResponse
	if err := h.deps.Outbound.PostJSON(ctx, h.deps.Config.Automation.SupplierURL, scrapeRequest{
		Supplier: rule.Action,
	}, &resp); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, sp := range resp.Products {
		if err := h.deps.Products.Create(ctx, &catalog.Product{
			ID:           h.deps.Node.Generate().String(),
			UserID:       rule.UserID,
			Name:         sp.Name,
			Price:        roundCents(sp.Price * importMarkup),
			SupplierID:   sp.SupplierID,
			AutoImported: true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return err
		}
	}

	zap.L().Debug("imported supplier products", zap.String("rule_id", rule.ID), zap.Int("products", len(resp.Products)))
	return nil
}
