package meeting

// Тип встречи Zoom: 2 означает запланированную.
const scheduledMeeting = 2

// Запрос на создание встречи
type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"` // UTC, "yyyy-MM-ddTHH:mm:ssZ"
	Duration  int             `json:"duration"`   // минуты
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

// Ответ Zoom на создание встречи
type createMeetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	Password string `json:"password"`
}
