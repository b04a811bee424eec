package timescaledb

const createHypertableSQL = `SELECT create_hypertable(?, 'time', if_not_exists => TRUE, migrate_data => TRUE)`
