package utils

import (
	"log"

	"quizzer/cache"
	"quizzer/config"

	"github.com/robfig/cron/v3"
)

// InitializeCachePurgeScheduler drops expired score-cache entries on the
// configured cron spec so a long-lived process does not accumulate entries
// for quizzes nobody reads anymore.
func InitializeCachePurgeScheduler(scoreCache *cache.MemoryCache) *cron.Cron {
	log.Println("[SCHEDULER] Initializing cache purge scheduler...")

	c := cron.New()

	_, err := c.AddFunc(config.AppConfig.CachePurgeSpec, func() {
		purged := scoreCache.Purge()
		if purged > 0 {
			log.Printf("[SCHEDULER] Purged %d expired score cache entries", purged)
		}
	})
	if err != nil {
		log.Printf("[SCHEDULER] Invalid cache purge spec %q: %v", config.AppConfig.CachePurgeSpec, err)
		return c
	}

	c.Start()
	log.Printf("[SCHEDULER] Cache purge scheduler started (%s)", config.AppConfig.CachePurgeSpec)
	return c
}
