package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/config"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/domain"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/infrastructure/gateway"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/logger"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/worker"
)

func main() {
	orders := flag.Int("orders", 20, "number of orders to simulate")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	interval := flag.Duration("reconcile-every", 50*time.Millisecond, "reconciliation interval while deliveries run")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := repo.NewMemoryStore()
	// per-event outcomes are printed below; only warnings from the processor
	webhooks := service.NewWebhookService(store, log.Level(zerolog.WarnLevel))
	records := service.NewRecordService(store, log)

	opts := gateway.DefaultOptions()
	opts.Seed = *seed
	gw := gateway.NewSimulatedGateway(opts)
	rng := rand.New(rand.NewPCG(*seed, *seed))

	// reconciler races the deliveries, as it would against a live gateway
	rw := worker.NewReconciliationWorker(store, webhooks, gw, *interval, log)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		rw.Run(ctx)
	}()

	fmt.Printf("--- STARTING SIMULATION (%d ORDERS, seed=%d) ---\n", *orders, *seed)
	tally := map[string]int{}
	for i := 0; i < *orders; i++ {
		// 1. Seed an order with its payment and held tickets
		payment, err := seedOrder(ctx, records, rng)
		if err != nil {
			log.Error().Err(err).Msg("seed failed")
			continue
		}

		// 2. Gateway settles and delivers (maybe twice, maybe out of order, maybe not at all)
		events, err := gw.Settle(ctx, payment.ID, payment.Amount)
		if err != nil {
			log.Error().Err(err).Msg("settle failed")
			continue
		}

		fmt.Printf("[%d] Payment %s (order %s)\n", i+1, payment.ID, payment.OrderID)
		for _, ev := range events {
			result, err := webhooks.ProcessWebhook(ctx, ev)
			outcome := string(result.Outcome)
			if err != nil {
				outcome = "rejected: " + err.Error()
			}
			tally[outcome]++
			fmt.Printf("    %-10s %-40s -> %s\n", ev.Status, ev.WebhookEventID, outcome)
		}

		// 3. What the store says now
		fresh, err := records.GetPayment(ctx, payment.ID)
		if err != nil {
			log.Error().Err(err).Msg("reload payment")
			continue
		}
		fmt.Printf("    -> DB Status: %s\n", fresh.Status)
		fmt.Println("---------------------------------------------------")
	}

	// 4. Stop the background loop, then sweep whatever it has not reached yet
	cancel()
	<-stopped
	fixed, err := rw.Process(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("reconciliation failed")
	}

	fmt.Println("--- SUMMARY ---")
	for outcome, n := range tally {
		fmt.Printf("%-12s %d\n", outcome, n)
	}
	fmt.Printf("reconciled   %d\n", fixed)
	fmt.Println(records.Health(context.Background()))
}

func seedOrder(ctx context.Context, records service.RecordService, rng *rand.Rand) (domain.Payment, error) {
	tickets := 1 + rng.IntN(3)
	unitPrice := math.Round(rng.Float64()*10000) / 100
	total := unitPrice * float64(tickets)

	out, err := records.Seed(ctx, service.SeedInput{
		Orders: []domain.Order{{TotalAmount: total}},
	})
	if err != nil {
		return domain.Payment{}, err
	}
	orderID := out.Orders[0].ID

	in := service.SeedInput{Payments: []domain.Payment{{OrderID: orderID, Amount: total}}}
	for range tickets {
		in.Tickets = append(in.Tickets, domain.Ticket{OrderID: orderID, UnitPrice: unitPrice})
	}
	out, err = records.Seed(ctx, in)
	if err != nil {
		return domain.Payment{}, err
	}
	return out.Payments[0], nil
}
