package tasks

// TaskSchedulerInterface is the queue the bot hands its work to.
//
//	scheduler := NewScheduler(4, 100, 2*time.Minute)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(task)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
