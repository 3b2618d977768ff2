package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

// EventSeeder handles seeding sample prediction market events
type EventSeeder struct {
	db *gorm.DB
}

func NewEventSeeder(db *gorm.DB) *EventSeeder {
	return &EventSeeder{db: db}
}

type eventSeed struct {
	title       string
	slug        string
	description string
	category    string
	closesIn    time.Duration
	outcomes    []outcomeSeed
}

type outcomeSeed struct {
	label    string
	priceBps int
}

var sampleEvents = []eventSeed{
	{
		title:       "Will BTC close above $100k on December 31?",
		slug:        "btc-100k-dec-31",
		description: "Resolves YES if the BTC/USD daily close on December 31 is above $100,000.",
		category:    "crypto",
		closesIn:    90 * 24 * time.Hour,
		outcomes: []outcomeSeed{
			{label: "Yes", priceBps: 6300},
			{label: "No", priceBps: 3700},
		},
	},
	{
		title:       "Will ETH flip BTC by market cap this year?",
		slug:        "eth-flip-btc",
		description: "Resolves YES if ETH market cap exceeds BTC market cap at any point before year end.",
		category:    "crypto",
		closesIn:    120 * 24 * time.Hour,
		outcomes: []outcomeSeed{
			{label: "Yes", priceBps: 900},
			{label: "No", priceBps: 9100},
		},
	},
	{
		title:       "Will a spot SOL ETF be approved this quarter?",
		slug:        "sol-etf-quarter",
		description: "Resolves YES on an SEC approval of any spot SOL ETF before quarter end.",
		category:    "crypto",
		closesIn:    60 * 24 * time.Hour,
		outcomes: []outcomeSeed{
			{label: "Yes", priceBps: 4200},
			{label: "No", priceBps: 5800},
		},
	},
}

// SeedEvents creates the sample events if their slugs are not taken
func (s *EventSeeder) SeedEvents() error {
	for _, seed := range sampleEvents {
		var existing model.Event
		if err := s.db.Where("slug = ?", seed.slug).First(&existing).Error; err == nil {
			log.Printf("Event %s already exists, skipping", seed.slug)
			continue
		}

		now := time.Now()
		eventID, _ := uuid.NewV7()
		event := model.Event{
			ID:          eventID.String(),
			Title:       seed.title,
			Slug:        seed.slug,
			Description: seed.description,
			Category:    seed.category,
			Status:      shared.EventStatusOpen,
			ClosesAt:    now.Add(seed.closesIn),
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		for _, o := range seed.outcomes {
			outcomeID, _ := uuid.NewV7()
			event.Outcomes = append(event.Outcomes, model.Outcome{
				ID:        outcomeID.String(),
				EventID:   event.ID,
				Label:     o.label,
				PriceBps:  o.priceBps,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		if err := s.db.Create(&event).Error; err != nil {
			log.Printf("Error creating event %s: %v", seed.slug, err)
			return err
		}

		log.Printf("Created event: %s", seed.slug)
	}

	return nil
}
