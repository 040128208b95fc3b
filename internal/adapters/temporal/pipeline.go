package temporal

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/strollcast/strollcast/internal/workflows"
)

// Pipeline starts narration workflows on a Temporal cluster. It implements
// ports.NarrationPipeline.
type Pipeline struct {
	client    client.Client
	taskQueue string
	voiceID   string
}

// New connects to Temporal.
func New(hostPort, namespace, taskQueue, voiceID string) (*Pipeline, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial: %w", err)
	}
	return &Pipeline{client: c, taskQueue: taskQueue, voiceID: voiceID}, nil
}

// StartTourNarration launches the narration workflow for a tour. The
// workflow ID is derived from the tour ID, so republishing a tour while a
// run is in flight is rejected by Temporal rather than duplicated.
func (p *Pipeline) StartTourNarration(ctx context.Context, tourID string) error {
	opts := client.StartWorkflowOptions{
		ID:        "narration-" + tourID,
		TaskQueue: p.taskQueue,
	}
	input := workflows.TourNarrationInput{TourID: tourID, VoiceID: p.voiceID}

	_, err := p.client.ExecuteWorkflow(ctx, opts, workflows.TourNarrationWorkflow, input)
	if err != nil {
		return fmt.Errorf("start narration workflow: %w", err)
	}
	return nil
}

// Close shuts down the Temporal connection.
func (p *Pipeline) Close() {
	p.client.Close()
}
