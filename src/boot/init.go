package boot

import (
	"gala/src/db"
	"gala/src/lib"
	"gala/src/models"
	"gala/src/utils"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	gdb := db.GetDb()

	err := gdb.AutoMigrate(
		&models.StaffUser{},
		&models.Guest{},
		&models.Registration{},
		&models.Payment{},
		&models.Checkin{},
		&models.Table{},
		&models.EmailTemplate{},
		&models.ScheduledEmail{},
		&models.TrailLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	// First check-in per registration is unique; override rows are exempt.
	// This index is the concurrency authority for double submits.
	if err := gdb.Exec(`
	CREATE UNIQUE INDEX IF NOT EXISTS idx_checkins_first_admission
	ON checkins (registration_id) WHERE NOT is_override;
	`).Error; err != nil {
		log.Printf("Error creating index idx_checkins_first_admission: %s\n", err.Error())
	}

	return gdb
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateSweepJob(utils.SweepScheduledEmails, time.Minute)
	if err != nil {
		log.Printf("Error scheduling email sweep: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled email sweep job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// RecoverMissedEmails marks scheduled emails whose send time passed while
// the server was down so the next sweep picks them up immediately.
func RecoverMissedEmails() {
	gdb := db.GetDb()
	var count int64
	if err := gdb.
		Model(&models.ScheduledEmail{}).
		Where("state = ? AND send_at < ?", "pending", time.Now()).
		Count(&count).Error; err != nil {
		log.Printf("Error counting missed scheduled emails: %s\n", err.Error())
		return
	}
	if count > 0 {
		log.Printf("Found %d scheduled emails past due; sweep will send them\n", count)
	}
}
