package jogging

// Feedback is the success cue fired when a session reaches its target
type Feedback interface {
	Success()
}

// FeedbackFunc adapts a function to Feedback
type FeedbackFunc func()

func (f FeedbackFunc) Success() {
	if f != nil {
		f()
	}
}

type noFeedback struct{}

func (noFeedback) Success() {}
