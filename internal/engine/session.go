package engine

import "sort"

// SceneID identifies one of the eight stages of the narrative.
type SceneID int

const (
	ScenePrologue  SceneID = 1
	SceneWorld     SceneID = 2
	SceneSurvey    SceneID = 3
	SceneArtifacts SceneID = 4
	ScenePhrases   SceneID = 5
	SceneInterlude SceneID = 6
	SceneReveal    SceneID = 7
	SceneDialogue  SceneID = 8
)

// Valid reports whether id is a member of the scene set.
func (id SceneID) Valid() bool {
	return id >= ScenePrologue && id <= SceneDialogue
}

// Session is the complete in-memory state of one viewing. The Engine is the
// sole writer of Scene; each satellite is mutated only through its own
// operations. Everything here is rebuilt atomically by Reset.
type Session struct {
	Scene SceneID

	Hold      HoldState
	Artifacts ArtifactCounter
	Phrases   PhraseSet
	Flags     map[string]bool
	Reply     ReplyState

	ImageB64       string
	ImageRequested bool
	AudioStarted   bool
}

func newSession(s Settings) *Session {
	return &Session{
		Scene:     ScenePrologue,
		Artifacts: ArtifactCounter{Shown: s.ArtifactInitial, Total: s.ArtifactTotal},
		Phrases:   PhraseSet{Dismissed: make(map[int]bool), Total: s.PhraseTotal},
		Flags:     make(map[string]bool),
		Reply:     ReplyState{Status: ReplyIdle},
	}
}

// Snapshot is a point-in-time view of the session for the API and the
// operator UI. ReplyDisplayed carries the typewriter prefix as of the
// moment the snapshot was taken.
type Snapshot struct {
	Scene            int             `json:"scene"`
	Hold             HoldState       `json:"hold"`
	ArtifactsShown   int             `json:"artifacts_shown"`
	ArtifactsTotal   int             `json:"artifacts_total"`
	PhrasesDismissed []int           `json:"phrases_dismissed"`
	PhrasesTotal     int             `json:"phrases_total"`
	Flags            map[string]bool `json:"flags"`
	ReplyStatus      string          `json:"reply_status"`
	ReplyInput       string          `json:"reply_input,omitempty"`
	ReplyDisplayed   string          `json:"reply_displayed,omitempty"`
	ReplyPlaying     bool            `json:"reply_playing"`
	HasImage         bool            `json:"has_image"`
	ImageB64         string          `json:"image_b64,omitempty"`
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session

	dismissed := make([]int, 0, len(s.Phrases.Dismissed))
	for idx := range s.Phrases.Dismissed {
		dismissed = append(dismissed, idx)
	}
	sort.Ints(dismissed)

	flags := make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		flags[k] = v
	}

	return Snapshot{
		Scene:            int(s.Scene),
		Hold:             s.Hold,
		ArtifactsShown:   s.Artifacts.Shown,
		ArtifactsTotal:   s.Artifacts.Total,
		PhrasesDismissed: dismissed,
		PhrasesTotal:     s.Phrases.Total,
		Flags:            flags,
		ReplyStatus:      string(s.Reply.Status),
		ReplyInput:       s.Reply.InputText,
		ReplyDisplayed:   e.replyDisplayedLocked(),
		ReplyPlaying:     s.Reply.PlayingBack,
		HasImage:         s.ImageB64 != "",
		ImageB64:         s.ImageB64,
	}
}
