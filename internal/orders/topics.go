package orders

// TopicEvents carries every broadcast envelope, keyed by event type
// so each aggregate's events stay ordered on one partition.
const TopicEvents = "restaurant.events"
