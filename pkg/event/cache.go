package event

// Client cache keys. Clients key their query caches by these names and
// must refetch whichever keys an envelope lists.
const (
	CacheKeyAppointments        = "appointments"
	CacheKeyNotificationSummary = "notificationSummary"
	CacheKeyAllNotifications    = "allNotifications"
	CacheKeyInvoices            = "invoices"
	CacheKeyOffers              = "offers"
)

// cacheInvalidations maps each event type to the cache keys a receiving
// client must invalidate. Every member of AllTypes needs an entry.
var cacheInvalidations = map[Type][]string{
	TypeAppointmentConfirmed: {CacheKeyAppointments, CacheKeyNotificationSummary, CacheKeyAllNotifications},
	TypeAppointmentCancelled: {CacheKeyAppointments, CacheKeyNotificationSummary, CacheKeyAllNotifications},
	TypeAppointmentClosed:    {CacheKeyAppointments, CacheKeyNotificationSummary, CacheKeyAllNotifications, CacheKeyInvoices},
	TypeOfferInvite:          {CacheKeyOffers, CacheKeyNotificationSummary, CacheKeyAllNotifications},
	TypeInvoiceGenerated:     {CacheKeyInvoices, CacheKeyNotificationSummary, CacheKeyAllNotifications},
}

// CacheKeys returns the cache keys to invalidate for an event type. The
// returned slice is a copy.
func CacheKeys(t Type) []string {
	keys, ok := cacheInvalidations[t]
	if !ok {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
