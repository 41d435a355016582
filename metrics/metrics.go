package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/storytellerbot/storyteller/cache"
	"github.com/storytellerbot/storyteller/helpers"
)

var (
	// MessagesReceived counts all ever received messages
	MessagesReceived = expvar.NewInt("messages_received")

	// CommandsExecuted increases after each command execution
	CommandsExecuted = expvar.NewInt("commands_executed")

	// StoryContributions counts accepted story contributions
	StoryContributions = expvar.NewInt("story_contributions")

	// PollsCreated counts all created reaction polls
	PollsCreated = expvar.NewInt("polls_created")

	// TasksScheduled increases after each timed task registration
	TasksScheduled = expvar.NewInt("tasks_scheduled")

	// TasksFired increases after each timed task expiry
	TasksFired = expvar.NewInt("tasks_fired")

	// ActiveMenus tracks the number of live reaction menus
	ActiveMenus = expvar.NewInt("active_menus")

	// CoroutineCount counts all running goroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts the expvar http endpoint
func Init() {
	address := helpers.GetConfig().Path("metrics.address").Data().(string)
	cache.GetLogger().WithField("module", "metrics").Info("Listening on " + address)
	Uptime.Set(time.Now().Unix())
	go http.ListenAndServe(address, nil)

	go collectRuntimeMetrics()
}

// collectRuntimeMetrics counts running goroutines
func collectRuntimeMetrics() {
	for {
		CoroutineCount.Set(int64(runtime.NumGoroutine()))

		time.Sleep(15 * time.Second)
	}
}
