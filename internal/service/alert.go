// 保养告警：NATS 发布 + 落库 + WebSocket 推送

package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"cargoease/api/internal/model"
)

// 告警主题
const (
	SubjectAlertOil  = "cargoease.alert.oil"
	SubjectAlertTire = "cargoease.alert.tire"
)

// AlertPublisher 油/轮胎服务向外发告警的口
type AlertPublisher interface {
	Publish(msg model.AlertMessage)
}

// WSBroadcaster WebSocket 广播口，由 handler 层的 hub 实现
type WSBroadcaster interface {
	Broadcast(data []byte)
}

// AlertService 保养告警服务。发布端把告警丢上 NATS；订阅端消费、
// 落库并转发给 WebSocket 客户端。
type AlertService struct {
	db       *gorm.DB
	natsConn *nats.Conn
	wsHub    WSBroadcaster
	subs     []*nats.Subscription
}

// NewAlertService 创建告警服务
func NewAlertService(db *gorm.DB, natsConn *nats.Conn, wsHub WSBroadcaster) *AlertService {
	return &AlertService{db: db, natsConn: natsConn, wsHub: wsHub}
}

// Publish 实现 AlertPublisher，把告警发上 NATS
func (s *AlertService) Publish(msg model.AlertMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Alert] Failed to marshal alert: %v", err)
		return
	}

	subject := SubjectAlertOil
	if msg.Type == model.AlertTireWornToUsed {
		subject = SubjectAlertTire
	}
	if err := s.natsConn.Publish(subject, data); err != nil {
		log.Printf("[Alert] Failed to publish alert to %s: %v", subject, err)
	}
}

// Start 订阅告警主题
func (s *AlertService) Start() error {
	for _, subject := range []string{SubjectAlertOil, SubjectAlertTire} {
		sub, err := s.natsConn.Subscribe(subject, s.handleAlertMessage)
		if err != nil {
			return fmt.Errorf("subscribe %s failed: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// Stop 退订
func (s *AlertService) Stop() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

// handleAlertMessage 消费告警：落库并推给 WebSocket 客户端
func (s *AlertService) handleAlertMessage(msg *nats.Msg) {
	var alertMsg model.AlertMessage
	if err := json.Unmarshal(msg.Data, &alertMsg); err != nil {
		log.Printf("[Alert] Failed to parse alert message: %v", err)
		return
	}

	alert := model.MaintenanceAlert{
		Type:      alertMsg.Type,
		VehicleID: alertMsg.VehicleID,
		SubjectID: alertMsg.SubjectID,
		Title:     alertMsg.Title,
		Content:   alertMsg.Content,
		Status:    "unread",
	}
	if err := s.db.Create(&alert).Error; err != nil {
		log.Printf("[Alert] Failed to persist alert: %v", err)
		return
	}

	if s.wsHub != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type": "maintenance_alert",
			"data": alert,
		})
		if err != nil {
			return
		}
		s.wsHub.Broadcast(payload)
	}
}

// List 告警列表
func (s *AlertService) List(query *model.AlertListQuery) ([]model.MaintenanceAlert, int64, error) {
	db := s.db.Model(&model.MaintenanceAlert{})

	if query.VehicleID > 0 {
		db = db.Where("vehicle_id = ?", query.VehicleID)
	}
	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	db.Count(&total)

	var alerts []model.MaintenanceAlert
	offset := (query.Page - 1) * query.PageSize
	err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&alerts).Error
	return alerts, total, err
}

// MarkRead 标记已读
func (s *AlertService) MarkRead(alertID int) error {
	res := s.db.Model(&model.MaintenanceAlert{}).Where("id = ?", alertID).Update("status", "read")
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundError("alert %d", alertID)
	}
	return nil
}
