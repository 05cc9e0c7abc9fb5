package metadata

/**
 * @brief Describes a job to be run by the job system.
 * OnStart runs on a worker goroutine; OnComplete and OnFailure are
 * invoked later from the update loop.
 */
type JobTask struct {
	Name string
	/** @brief Required. The returned value is handed to OnComplete. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Optional. */
	OnComplete func(result interface{})
	/** @brief Optional. */
	OnFailure func(err error)
	/** @brief Passed to OnStart. */
	InputParams interface{}
}

// JobResult is the outcome of a finished task waiting to be dispatched.
type JobResult struct {
	Task   JobTask
	Result interface{}
	Err    error
}
