// Package types defines the wire models shared by the maintops client
// packages.
package types

import "encoding/json"

// Response is the fixed envelope every backend endpoint returns. Code 200
// signals success; any other value is an application-level failure even when
// the transport status is 200.
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the envelope carries a successful result.
func (r *Response) OK() bool {
	return r.Code == 200
}

// Decode unmarshals the envelope payload into v. A missing payload leaves v
// untouched.
func (r *Response) Decode(v interface{}) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// User is the signed-in identity returned by the auth endpoints.
type User struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// LoginRequest is the credential payload for POST /auth/login-json.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the payload of a successful login envelope.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

// RefreshResult is the payload of a successful POST /auth/refresh envelope.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
}

// Work order lifecycle states.
const (
	WorkOrderPending    = "pending"
	WorkOrderInProgress = "in_progress"
	WorkOrderCompleted  = "completed"
	WorkOrderApproved   = "approved"
	WorkOrderRejected   = "rejected"
)

// Work order categories.
const (
	WorkOrderPeriodicInspection = "periodic_inspection"
	WorkOrderTemporaryRepair    = "temporary_repair"
	WorkOrderSpotWork           = "spot_work"
)

// WorkOrder is a maintenance work order of any category.
type WorkOrder struct {
	ID          int      `json:"id"`
	OrderNumber string   `json:"order_number"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	ProjectID   int      `json:"project_id,omitempty"`
	ProjectName string   `json:"project_name,omitempty"`
	AssigneeID  int      `json:"assignee_id,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Department  string   `json:"department,omitempty"`
	PlannedDate string   `json:"planned_date,omitempty"`
	FinishedAt  string   `json:"finished_at,omitempty"`
	Photos      []string `json:"photos,omitempty"`
	Remark      string   `json:"remark,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// WorkOrderListOptions narrows a work-order listing.
type WorkOrderListOptions struct {
	Page       int
	PageSize   int
	Status     string
	ProjectID  int
	AssigneeID int
	Keyword    string
	DateFrom   string
	DateTo     string
}

// WorkOrderList is a paginated work-order listing payload.
type WorkOrderList struct {
	Items    []WorkOrder `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ApprovalRequest carries an approve/reject decision for a work order.
type ApprovalRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty"`
}

// Spare-part stock states.
const (
	SparePartsNormal     = "normal"
	SparePartsLowStock   = "low_stock"
	SparePartsOutOfStock = "out_of_stock"
)

// SparePart is one stocked spare part or repair tool.
type SparePart struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Specification string `json:"specification,omitempty"`
	Unit          string `json:"unit,omitempty"`
	Quantity      int    `json:"quantity"`
	Threshold     int    `json:"threshold,omitempty"`
	Status        string `json:"status,omitempty"`
	Location      string `json:"location,omitempty"`
}

// SparePartsUsage records an issue or return of spare parts.
type SparePartsUsage struct {
	ID         int    `json:"id"`
	PartID     int    `json:"part_id"`
	PartName   string `json:"part_name,omitempty"`
	Quantity   int    `json:"quantity"`
	Operation  string `json:"operation"`
	OperatorID int    `json:"operator_id,omitempty"`
	Operator   string `json:"operator,omitempty"`
	UsedAt     string `json:"used_at,omitempty"`
	Remark     string `json:"remark,omitempty"`
}

// Personnel is a maintainable staff record.
type Personnel struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IDCard     string `json:"id_card,omitempty"`
	Active     bool   `json:"active"`
}

// Project is a maintained project/site.
type Project struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Customer  string `json:"customer,omitempty"`
	Address   string `json:"address,omitempty"`
	Contact   string `json:"contact,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// MaintenanceLog is one technician's daily maintenance log entry.
type MaintenanceLog struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	ProjectID int    `json:"project_id,omitempty"`
	Content   string `json:"content"`
	LogDate   string `json:"log_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// WeeklyReport is a department weekly report.
type WeeklyReport struct {
	ID         int    `json:"id"`
	Department string `json:"department"`
	WeekStart  string `json:"week_start"`
	Summary    string `json:"summary"`
	Plan       string `json:"plan,omitempty"`
	Status     string `json:"status,omitempty"`
	AuthorID   int    `json:"author_id,omitempty"`
	Author     string `json:"author,omitempty"`
}

// WorkOrderStatistics is the backend-aggregated statistics payload.
type WorkOrderStatistics struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	InProgress int            `json:"in_progress"`
	Completed  int            `json:"completed"`
	Approved   int            `json:"approved"`
	Rejected   int            `json:"rejected"`
	ByType     map[string]int `json:"by_type,omitempty"`
	ByProject  map[string]int `json:"by_project,omitempty"`
}

// OnlineUser is one presence record.
type OnlineUser struct {
	ID           int    `json:"id"`
	UserID       int    `json:"user_id"`
	UserName     string `json:"user_name"`
	Department   string `json:"department,omitempty"`
	Role         string `json:"role,omitempty"`
	LoginTime    string `json:"login_time"`
	LastActivity string `json:"last_activity"`
	DeviceType   string `json:"device_type"`
	IsActive     bool   `json:"is_active"`
}

// OnlineStatistics is the presence breakdown across device types.
type OnlineStatistics struct {
	Total   int          `json:"total"`
	PCCount int          `json:"pc_count"`
	H5Count int          `json:"h5_count"`
	PCUsers []OnlineUser `json:"pc_users,omitempty"`
	H5Users []OnlineUser `json:"h5_users,omitempty"`
}
