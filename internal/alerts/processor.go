package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the Asynq server and initializes a shared client.
func Init() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		if host := os.Getenv("REDIS_HOST"); host != "" {
			port := os.Getenv("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			redisAddr = host + ":" + port
		} else {
			// Default to docker-compose service name if running in container; otherwise localhost
			redisAddr = "redis:6379"
			if os.Getenv("RUN_LOCAL") == "true" {
				redisAddr = "127.0.0.1:6379"
			}
		}
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAssignmentStatus, handleAssignmentStatus)
	mux.HandleFunc(TaskMilestoneReleased, handleMilestoneReleased)
	mux.HandleFunc(TaskProposalDecided, handleProposalDecided)
	mux.HandleFunc(TaskDisputeOpened, handleDisputeOpened)
	mux.HandleFunc(TaskDisputeResolved, handleDisputeResolved)
	mux.HandleFunc(TaskAdminAlert, handleAdminAlert)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"notifications": 10,
			"alerts":        5,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

// Handlers below parse payloads and deliver via the mailer, falling back to
// logs until party email lookup lands.

func handleAssignmentStatus(_ context.Context, t *asynq.Task) error {
	var p AssignmentStatusPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	log.Printf("[notify] AssignmentStatus -> assignment=%s %s->%s client=%s consultant=%s",
		p.AssignmentID, p.FromStatus, p.ToStatus, p.ClientID, p.ConsultantID)
	return nil
}

func handleMilestoneReleased(_ context.Context, t *asynq.Task) error {
	var p MilestoneReleasedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	log.Printf("[notify] MilestoneReleased -> assignment=%s milestone=%s amount=%d consultant=%s",
		p.AssignmentID, p.MilestoneID, p.Amount, p.ConsultantID)
	return nil
}

func handleProposalDecided(_ context.Context, t *asynq.Task) error {
	var p ProposalDecidedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	log.Printf("[notify] ProposalDecided -> project=%s consultant=%s decision=%s",
		p.ProjectID, p.ConsultantID, p.Decision)
	return nil
}

func handleDisputeOpened(_ context.Context, t *asynq.Task) error {
	var p DisputePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendAdminEmail("Review dispute opened", "Review "+p.ReviewID+" disputed: "+p.Reason); err != nil {
		log.Printf("[notify][ERROR] DisputeOpened send failed: %v", err)
		return err
	}
	log.Printf("[notify] DisputeOpened sent -> review=%s by=%s", p.ReviewID, p.ActorID)
	return nil
}

func handleDisputeResolved(_ context.Context, t *asynq.Task) error {
	var p DisputePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	log.Printf("[notify] DisputeResolved -> review=%s by=%s resolution=%s",
		p.ReviewID, p.ActorID, p.Resolution)
	return nil
}

func handleAdminAlert(_ context.Context, t *asynq.Task) error {
	var p AdminAlertPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendAdminEmail("Admin Alert", p.Message); err != nil {
		log.Printf("[notify][ERROR] AdminAlert send failed: %v", err)
		return err
	}
	log.Printf("[notify] AdminAlert sent -> severity=%s by=%s", p.Severity, p.AdminID)
	return nil
}
