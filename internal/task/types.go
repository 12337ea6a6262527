package task

// Task is a single saved task. It is never modified after creation.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Status      bool   `json:"status" yaml:"status"`
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status
}

// RawInput is unvalidated form input. A nil Status means the field was not
// submitted at all, which is different from an unchecked box.
type RawInput struct {
	Title       string
	Description string
	Status      *bool
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Validated is input that passed Validate.
type Validated struct {
	Title       string
	Description string
	Status      bool
}

// Counts holds completed and incomplete totals for a task sequence.
type Counts struct {
	Completed  int `json:"completed" yaml:"completed"`
	Incomplete int `json:"incomplete" yaml:"incomplete"`
}

// Total returns the number of tasks counted.
func (c Counts) Total() int {
	return c.Completed + c.Incomplete
}

// CountByStatus partitions tasks by completion status.
func CountByStatus(tasks []Task) Counts {
	var c Counts
	for _, t := range tasks {
		if t.Status {
			c.Completed++
		} else {
			c.Incomplete++
		}
	}
	return c
}
