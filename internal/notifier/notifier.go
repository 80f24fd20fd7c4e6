package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/logger"
	log "github.com/sirupsen/logrus"
)

type apiInterface interface {
	Send(chattable botApi.Chattable) (botApi.Message, error)
}

type studentRepository interface {
	GetByID(ctx context.Context, id uint) (*entities.Student, error)
}

// Notifier tells students about their applications over Telegram. Students
// without a linked chat are skipped.
type Notifier struct {
	api      apiInterface
	updates  *botApi.BotAPI
	students studentRepository
	bus      EventBus.Bus
}

func NewNotifier(token string, bus EventBus.Bus, students studentRepository) (*Notifier, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	n, err := newNotifier(api, bus, students)
	if err != nil {
		return nil, err
	}
	n.updates = api
	return n, nil
}

func newNotifier(api apiInterface, bus EventBus.Bus, students studentRepository) (*Notifier, error) {
	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if students == nil {
		return nil, errors.New("student repository is nil")
	}

	n := &Notifier{api: api, students: students, bus: bus}

	if err := bus.SubscribeAsync(events.ApplicationStatusChangedTopic, n.onApplicationStatusChanged, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.PlacementCreatedTopic, n.onPlacementCreated, false); err != nil {
		return nil, err
	}
	return n, nil
}

// Run answers /start with the chat id a student links in their profile.
func (n *Notifier) Run() {
	if n.updates == nil {
		return
	}

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	for update := range n.updates.GetUpdatesChan(updateConfig) {
		if update.Message == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if update.Message.Command() != "start" {
			continue
		}
		n.send(update.Message.Chat.ID, fmt.Sprintf(
			"Your chat id is %d. Add it to your student profile to get application updates.", update.Message.Chat.ID))
	}
}

func (n *Notifier) Stop() {
	if n.updates != nil {
		n.updates.StopReceivingUpdates()
	}
	n.bus.WaitAsync()
	_ = n.bus.Unsubscribe(events.ApplicationStatusChangedTopic, n.onApplicationStatusChanged)
	_ = n.bus.Unsubscribe(events.PlacementCreatedTopic, n.onPlacementCreated)
}

func (n *Notifier) onApplicationStatusChanged(event events.ApplicationStatusChanged) {
	if event.Status == entities.StatusPlaced {
		return
	}
	n.notifyStudent(event.StudentID, fmt.Sprintf("Your application for \"%s\" is now: %s", event.JobTitle, event.Status))
}

func (n *Notifier) onPlacementCreated(event events.PlacementCreated) {
	n.notifyStudent(event.StudentID, fmt.Sprintf("Congratulations! You have been placed for \"%s\".", event.JobTitle))
}

func (n *Notifier) notifyStudent(studentID uint, text string) {
	student, err := n.students.GetByID(context.Background(), studentID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("couldn't load student %d to notify: %v", studentID, err)
		return
	}
	if student.TelegramChatID == nil {
		return
	}
	n.send(*student.TelegramChatID, text)
}

func (n *Notifier) send(chatID int64, text string) {
	if _, err := n.api.Send(botApi.NewMessage(chatID, text)); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occured while sending message: %v", err)
	}
}
