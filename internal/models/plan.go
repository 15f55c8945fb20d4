package models

import "time"

// Сегменты тарифных планов.
const (
	SegmentBasic   = "basic"
	SegmentMid     = "mid"
	SegmentPremium = "premium"
)

// Unlimited — сентинел для безлимитных квот (трафик, минуты, SMS).
const Unlimited = "UNLIMITED"

// Plan представляет тарифный план мобильного оператора в каталоге.
// Деактивация плана — мягкое удаление (Active=false): записи никогда
// не удаляются физически, чтобы сохранить историю для существующих контрактов.
type Plan struct {
	ID            string    // Уникальный идентификатор плана
	Name          string    // Название плана
	Description   string    // Описание плана
	Price         float64   // Цена плана в месяц
	DataAllowance string    // Квота трафика, например "5GB" или "UNLIMITED"
	Minutes       string    // Квота минут, например "300" или "UNLIMITED"
	SMS           string    // Квота SMS
	Speed4G       string    // Скорость в сети 4G, например "50 Mbps"
	Speed5G       string    // Скорость в сети 5G (пустая строка — не поддерживается)
	FreeMessaging bool      // Бесплатные мессенджеры
	FreeSocial    string    // Бесплатные соцсети: "none", список или "all"
	International string    // Условия международных звонков
	Roaming       string    // Условия роуминга
	Segment       string    // Сегмент плана: basic, mid или premium
	Active        bool      // Признак активности (false — план снят с продажи)
	AdvisorUID    string    // Идентификатор консультанта-владельца
	ImageURL      string    // Публичный URL промо-изображения (опционально)
	ImagePath     string    // Путь изображения в блоб-хранилище (опционально)
	CreatedAt     time.Time // Дата создания
	UpdatedAt     time.Time // Дата последнего изменения
}

// DummyPlan используется для приёма данных плана из JSON-запроса
// при создании и обновлении. Цена приходит строкой и парсится вручную,
// чтобы вернуть понятную ошибку валидации.
type DummyPlan struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Description   string `json:"description" validate:"required"`
	Price         string `json:"price" validate:"required"`
	DataAllowance string `json:"data_allowance" validate:"required"`
	Minutes       string `json:"minutes" validate:"required"`
	SMS           string `json:"sms" validate:"required"`
	Speed4G       string `json:"speed_4g" validate:"required"`
	Speed5G       string `json:"speed_5g,omitempty"`
	FreeMessaging bool   `json:"free_messaging,omitempty"`
	FreeSocial    string `json:"free_social,omitempty"`
	International string `json:"international,omitempty"`
	Roaming       string `json:"roaming,omitempty"`
	Segment       string `json:"segment" validate:"required,oneof=basic mid premium"`
}
