package console

// User is the authenticated console operator.
type User struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	MiddleName string  `json:"middle_name"`
	Role       string  `json:"role"`
	Origin     string  `json:"origin"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
	ImageURL   *string `json:"image_url"`
}

// Auction is one tender or technical-council event row.
type Auction struct {
	ChatID        string  `json:"chat_id"`
	AuctionID     string  `json:"auction_id"`
	AuctionChatID string  `json:"auction_chat_id"`
	Name          string  `json:"name"`
	PortalID      string  `json:"portal_id"`
	Date          string  `json:"date"`
	EventType     string  `json:"event_type"`
	ChatStatus    string  `json:"chat_status"`
	Region        *string `json:"region"`
	Organizer     string  `json:"organizer"`
}

// AuctionPage is one page of the auction listing.
type AuctionPage struct {
	Data  []Auction `json:"data"`
	Total int       `json:"total"`
}

// AuctionListParams are the listing filters; zero values are omitted from
// the query.
type AuctionListParams struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	EventType string
	Region    string
}

// CommercialOffer is one supplier bid within a lot.
type CommercialOffer struct {
	CommercialOfferID   string   `json:"commercial_offer_id"`
	CommercialOfferName string   `json:"commercial_offer_name"`
	AuctionID           string   `json:"auction_id"`
	LotID               string   `json:"lot_id"`
	KontragentGUID      string   `json:"kontragent_guid"`
	BIIN                string   `json:"biin"`
	Email               []string `json:"email"`
	PhoneNumber         []string `json:"phone_number"`
	Advance             string   `json:"advance"`
	Guarantee           string   `json:"guarantee"`
	BespokeDeadline     string   `json:"bespoke_deadline"`
	AmountMaterials     float64  `json:"amount_materials"`
	AmountWork          float64  `json:"amount_work"`
	NDSMaterials        bool     `json:"nds_materials"`
	NDSWork             bool     `json:"nds_work"`
	PriceAfter          float64  `json:"price_after"`
	TotalPrice          float64  `json:"total_price"`
	Rating              float64  `json:"rating"`
	RatingAdvance       float64  `json:"rating_advance"`
	RatingDeadline      float64  `json:"rating_deadline"`
	RatingPrice         float64  `json:"rating_price"`
	FinalRating         float64  `json:"final_rating"`
	RecommendedWinner   bool     `json:"recommended_winner"`
	ReserveWinner       bool     `json:"reserver_winner"`
	IsFixed             bool     `json:"is_fixed"`
	Comments            string   `json:"comments"`
	Info                string   `json:"info"`
}

// Lot groups the commercial offers competing for one lot.
type Lot struct {
	LotID            string            `json:"lot_id"`
	LotGUID          string            `json:"lot_guid"`
	LotName          string            `json:"lot_name"`
	LotNumber        int               `json:"lot_number"`
	AuctionID        string            `json:"auction_id"`
	AuctionType      string            `json:"auction_type"`
	PortalID         string            `json:"portal_id"`
	StartingPrice    float64           `json:"starting_price"`
	StepAmount       float64           `json:"step_amount"`
	State            string            `json:"state"`
	HistoryDepth     int               `json:"history_depth"`
	CommercialOffers []CommercialOffer `json:"commercial_offers"`
}

// AnalyticsSummary counts tenders over the selected period.
type AnalyticsSummary struct {
	TendersTotal         int `json:"tenders_total"`
	TendersWithWinner    int `json:"tenders_with_winner"`
	TendersWithoutWinner int `json:"tenders_without_winner"`
}

// KPIMetric is the aggregate metric block of the analytics report.
type KPIMetric struct {
	TendersTotal                 int     `json:"tenders_total"`
	TendersWithWinner            int     `json:"tenders_with_winner"`
	TendersWithoutWinner         int     `json:"tenders_without_winner"`
	CommercialOffersTotal        int     `json:"commercial_offers_total"`
	AvgCommercialOffersPerTender float64 `json:"avg_commercial_offers_per_tender"`
	AvgDaysBeforeStart           float64 `json:"avg_days_before_start"`
	AvgResponseTimeSeconds       float64 `json:"avg_response_time_seconds"`
	AvgTenderDurationMinutes     float64 `json:"avg_tender_duration_minutes"`
	AvgWaitMinutes               float64 `json:"avg_wait_minutes"`
}

// ChartDataPoint is one bucket of the analytics chart.
type ChartDataPoint struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Tenders     int    `json:"tenders"`
}

// AnalyticsData is the full analytics report payload.
type AnalyticsData struct {
	Period  AnalyticsSummary `json:"period"`
	Metrics KPIMetric        `json:"metrics"`
	Chart   []ChartDataPoint `json:"chart"`
}

// RecordingArtifact is one exported recording of an auction session.
type RecordingArtifact struct {
	ChatID       string `json:"chat_id"`
	RoomName     string `json:"room_name"`
	Filename     string `json:"filename"`
	DownloadURL  string `json:"download_url"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}
