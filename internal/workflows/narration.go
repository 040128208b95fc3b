package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TourNarrationInput is the input for the narration workflow.
type TourNarrationInput struct {
	TourID  string
	VoiceID string
}

// StopNarration is one stop's narration text, loaded at workflow start.
type StopNarration struct {
	SiteID string
	Order  int
	Text   string
}

// StopAudio pairs a stop with its synthesised audio URL.
type StopAudio struct {
	SiteID   string `json:"site_id"`
	Order    int    `json:"order"`
	AudioURL string `json:"audio_url"`
}

// TourNarrationWorkflow synthesises audio for every narrated stop of a
// published tour, attaches each clip to its stop, uploads a playlist
// manifest, and stamps the manifest URL onto the tour. Synthesis hits the
// audio cache first, so republishing an unchanged tour costs nothing.
func TourNarrationWorkflow(ctx workflow.Context, input TourNarrationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting narration workflow", "tourID", input.TourID)

	actOpts := workflow.ActivityOptions{
		// TTS synthesis of a long narration can take a while.
		StartToCloseTimeout: 3 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Load the narration text for every stop
	var stops []StopNarration
	if err := workflow.ExecuteActivity(ctx, "LoadNarrationTexts", input.TourID).Get(ctx, &stops); err != nil {
		return err
	}
	if len(stops) == 0 {
		logger.Info("No narrated stops, nothing to synthesise", "tourID", input.TourID)
		return nil
	}

	// Step 2: Synthesise and attach audio stop by stop
	playlist := make([]StopAudio, 0, len(stops))
	for _, stop := range stops {
		var audioURL string
		err := workflow.ExecuteActivity(ctx, "SynthesizeNarration", stop.Text, input.VoiceID).Get(ctx, &audioURL)
		if err != nil {
			return err
		}

		if err := workflow.ExecuteActivity(ctx, "AttachStopAudio", input.TourID, stop.SiteID, audioURL).Get(ctx, nil); err != nil {
			return err
		}

		playlist = append(playlist, StopAudio{SiteID: stop.SiteID, Order: stop.Order, AudioURL: audioURL})
	}

	// Step 3: Publish the playlist manifest and stamp it on the tour
	var manifestURL string
	if err := workflow.ExecuteActivity(ctx, "PublishAudioManifest", input.TourID, playlist).Get(ctx, &manifestURL); err != nil {
		return err
	}
	if err := workflow.ExecuteActivity(ctx, "SetTourAudio", input.TourID, manifestURL).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Narration complete", "tourID", input.TourID, "stops", len(playlist))
	return nil
}
