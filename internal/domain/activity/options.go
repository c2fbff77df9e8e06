package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	SampleID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
