package protocol

// Class IDs
const (
	ClassConnection = 10
	ClassChannel    = 20
	ClassExchange   = 40
	ClassQueue      = 50
	ClassBasic      = 60
	ClassConfirm    = 85
	ClassTx         = 90
)

// Method IDs for connection class
const (
	ConnectionStart          = 10
	ConnectionStartOK        = 11
	ConnectionSecure         = 20
	ConnectionSecureOK       = 21
	ConnectionTune           = 30
	ConnectionTuneOK         = 31
	ConnectionOpen           = 40
	ConnectionOpenOK         = 41
	ConnectionClose          = 50
	ConnectionCloseOK        = 51
	ConnectionBlocked        = 60
	ConnectionUnblocked      = 61
	ConnectionUpdateSecret   = 70
	ConnectionUpdateSecretOK = 71
)

// Method IDs for channel class
const (
	ChannelOpen    = 10
	ChannelOpenOK  = 11
	ChannelFlow    = 20
	ChannelFlowOK  = 21
	ChannelClose   = 40
	ChannelCloseOK = 41
)

// Method IDs for exchange class
const (
	ExchangeDeclare   = 10
	ExchangeDeclareOK = 11
	ExchangeDelete    = 20
	ExchangeDeleteOK  = 21
	ExchangeBind      = 30
	ExchangeBindOK    = 31
	ExchangeUnbind    = 40
	ExchangeUnbindOK  = 51
)

// Method IDs for queue class
const (
	QueueDeclare   = 10
	QueueDeclareOK = 11
	QueueBind      = 20
	QueueBindOK    = 21
	QueuePurge     = 30
	QueuePurgeOK   = 31
	QueueDelete    = 40
	QueueDeleteOK  = 41
	QueueUnbind    = 50
	QueueUnbindOK  = 51
)

// Method IDs for basic class
const (
	BasicQos          = 10
	BasicQosOK        = 11
	BasicConsume      = 20
	BasicConsumeOK    = 21
	BasicCancel       = 30
	BasicCancelOK     = 31
	BasicPublish      = 40
	BasicReturn       = 50
	BasicDeliver      = 60
	BasicGet          = 70
	BasicGetOK        = 71
	BasicGetEmpty     = 72
	BasicAck          = 80
	BasicReject       = 90
	BasicRecoverAsync = 100
	BasicRecover      = 110
	BasicRecoverOK    = 111
	BasicNack         = 120
)

// Method IDs for confirm class
const (
	ConfirmSelect   = 10
	ConfirmSelectOK = 11
)

// Method IDs for tx class
const (
	TxSelect     = 10
	TxSelectOK   = 11
	TxCommit     = 20
	TxCommitOK   = 21
	TxRollback   = 30
	TxRollbackOK = 31
)

// ConnectionStartMethod proposes a protocol version and SASL mechanisms (server to client).
type ConnectionStartMethod struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func (*ConnectionStartMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionStart) }
func (m *ConnectionStartMethod) arguments() []interface{} { return []interface{}{&m.VersionMajor, &m.VersionMinor, &m.ServerProperties, &m.Mechanisms, &m.Locales} }

// ConnectionStartOKMethod selects a SASL mechanism and carries the initial response.
type ConnectionStartOKMethod struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func (*ConnectionStartOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionStartOK) }
func (m *ConnectionStartOKMethod) arguments() []interface{} { return []interface{}{&m.ClientProperties, &m.Mechanism, &m.Response, &m.Locale} }

// ConnectionSecureMethod carries a SASL challenge.
type ConnectionSecureMethod struct {
	Challenge string
}

func (*ConnectionSecureMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionSecure) }
func (m *ConnectionSecureMethod) arguments() []interface{} { return []interface{}{&m.Challenge} }

// ConnectionSecureOKMethod is connection.secure-ok (10.21).
type ConnectionSecureOKMethod struct {
	Response string
}

func (*ConnectionSecureOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionSecureOK) }
func (m *ConnectionSecureOKMethod) arguments() []interface{} { return []interface{}{&m.Response} }

// ConnectionTuneMethod proposes connection limits.
type ConnectionTuneMethod struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (*ConnectionTuneMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionTune) }
func (m *ConnectionTuneMethod) arguments() []interface{} { return []interface{}{&m.ChannelMax, &m.FrameMax, &m.Heartbeat} }

// ConnectionTuneOKMethod carries the negotiated connection limits.
type ConnectionTuneOKMethod struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (*ConnectionTuneOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionTuneOK) }
func (m *ConnectionTuneOKMethod) arguments() []interface{} { return []interface{}{&m.ChannelMax, &m.FrameMax, &m.Heartbeat} }

// ConnectionOpenMethod opens a virtual host.
type ConnectionOpenMethod struct {
	VirtualHost string
}

func (*ConnectionOpenMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionOpen) }
func (m *ConnectionOpenMethod) arguments() []interface{} { return []interface{}{&m.VirtualHost} }

// ConnectionOpenOKMethod is connection.open-ok (10.41).
type ConnectionOpenOKMethod struct{}

func (*ConnectionOpenOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionOpenOK) }
func (*ConnectionOpenOKMethod) arguments() []interface{} { return nil }

// ConnectionCloseMethod requests a connection close, from either peer.
type ConnectionCloseMethod struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (*ConnectionCloseMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionClose) }
func (m *ConnectionCloseMethod) arguments() []interface{} { return []interface{}{&m.ReplyCode, &m.ReplyText, &m.ClassID, &m.MethodID} }

// ConnectionCloseOKMethod is connection.close-ok (10.51).
type ConnectionCloseOKMethod struct{}

func (*ConnectionCloseOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionCloseOK) }
func (*ConnectionCloseOKMethod) arguments() []interface{} { return nil }

// ConnectionBlockedMethod is a RabbitMQ extension sent when publishing is throttled.
type ConnectionBlockedMethod struct {
	Reason string
}

func (*ConnectionBlockedMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionBlocked) }
func (m *ConnectionBlockedMethod) arguments() []interface{} { return []interface{}{&m.Reason} }

// ConnectionUnblockedMethod is connection.unblocked (10.61).
type ConnectionUnblockedMethod struct{}

func (*ConnectionUnblockedMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionUnblocked) }
func (*ConnectionUnblockedMethod) arguments() []interface{} { return nil }

// ConnectionUpdateSecretMethod is a RabbitMQ extension that refreshes credentials.
type ConnectionUpdateSecretMethod struct {
	NewSecret string
	Reason    string
}

func (*ConnectionUpdateSecretMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionUpdateSecret) }
func (m *ConnectionUpdateSecretMethod) arguments() []interface{} { return []interface{}{&m.NewSecret, &m.Reason} }

// ConnectionUpdateSecretOKMethod is connection.update-secret-ok (10.71).
type ConnectionUpdateSecretOKMethod struct{}

func (*ConnectionUpdateSecretOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConnection, ConnectionUpdateSecretOK) }
func (*ConnectionUpdateSecretOKMethod) arguments() []interface{} { return nil }

// ChannelOpenMethod is channel.open (20.10).
type ChannelOpenMethod struct{}

func (*ChannelOpenMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelOpen) }
func (*ChannelOpenMethod) arguments() []interface{} { return nil }

// ChannelOpenOKMethod is channel.open-ok (20.11).
type ChannelOpenOKMethod struct{}

func (*ChannelOpenOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelOpenOK) }
func (*ChannelOpenOKMethod) arguments() []interface{} { return nil }

// ChannelFlowMethod asks the peer to pause or restart content flow.
type ChannelFlowMethod struct {
	Active bool
}

func (*ChannelFlowMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelFlow) }
func (m *ChannelFlowMethod) arguments() []interface{} { return []interface{}{&m.Active} }

// ChannelFlowOKMethod is channel.flow-ok (20.21).
type ChannelFlowOKMethod struct {
	Active bool
}

func (*ChannelFlowOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelFlowOK) }
func (m *ChannelFlowOKMethod) arguments() []interface{} { return []interface{}{&m.Active} }

// ChannelCloseMethod requests a channel close, from either peer.
type ChannelCloseMethod struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (*ChannelCloseMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelClose) }
func (m *ChannelCloseMethod) arguments() []interface{} { return []interface{}{&m.ReplyCode, &m.ReplyText, &m.ClassID, &m.MethodID} }

// ChannelCloseOKMethod is channel.close-ok (20.41).
type ChannelCloseOKMethod struct{}

func (*ChannelCloseOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassChannel, ChannelCloseOK) }
func (*ChannelCloseOKMethod) arguments() []interface{} { return nil }

// ExchangeDeclareMethod creates an exchange or checks that it exists.
type ExchangeDeclareMethod struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func (*ExchangeDeclareMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeDeclare) }
func (m *ExchangeDeclareMethod) arguments() []interface{} { return []interface{}{&m.Exchange, &m.Type, &m.Passive, &m.Durable, &m.AutoDelete, &m.Internal, &m.NoWait, &m.Arguments} }

// ExchangeDeclareOKMethod is exchange.declare-ok (40.11).
type ExchangeDeclareOKMethod struct{}

func (*ExchangeDeclareOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeDeclareOK) }
func (*ExchangeDeclareOKMethod) arguments() []interface{} { return nil }

// ExchangeDeleteMethod is exchange.delete (40.20).
type ExchangeDeleteMethod struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (*ExchangeDeleteMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeDelete) }
func (m *ExchangeDeleteMethod) arguments() []interface{} { return []interface{}{&m.Exchange, &m.IfUnused, &m.NoWait} }

// ExchangeDeleteOKMethod is exchange.delete-ok (40.21).
type ExchangeDeleteOKMethod struct{}

func (*ExchangeDeleteOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeDeleteOK) }
func (*ExchangeDeleteOKMethod) arguments() []interface{} { return nil }

// ExchangeBindMethod is a RabbitMQ extension binding an exchange to an exchange.
type ExchangeBindMethod struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (*ExchangeBindMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeBind) }
func (m *ExchangeBindMethod) arguments() []interface{} { return []interface{}{&m.Destination, &m.Source, &m.RoutingKey, &m.NoWait, &m.Arguments} }

// ExchangeBindOKMethod is exchange.bind-ok (40.31).
type ExchangeBindOKMethod struct{}

func (*ExchangeBindOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeBindOK) }
func (*ExchangeBindOKMethod) arguments() []interface{} { return nil }

// ExchangeUnbindMethod is exchange.unbind (40.40).
type ExchangeUnbindMethod struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func (*ExchangeUnbindMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeUnbind) }
func (m *ExchangeUnbindMethod) arguments() []interface{} { return []interface{}{&m.Destination, &m.Source, &m.RoutingKey, &m.NoWait, &m.Arguments} }

// ExchangeUnbindOKMethod is exchange.unbind-ok (40.51).
type ExchangeUnbindOKMethod struct{}

func (*ExchangeUnbindOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassExchange, ExchangeUnbindOK) }
func (*ExchangeUnbindOKMethod) arguments() []interface{} { return nil }

// QueueDeclareMethod creates a queue or checks that it exists.
type QueueDeclareMethod struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func (*QueueDeclareMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueDeclare) }
func (m *QueueDeclareMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.Passive, &m.Durable, &m.Exclusive, &m.AutoDelete, &m.NoWait, &m.Arguments} }

// QueueDeclareOKMethod confirms a queue and reports its counters.
type QueueDeclareOKMethod struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (*QueueDeclareOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueDeclareOK) }
func (m *QueueDeclareOKMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.MessageCount, &m.ConsumerCount} }

// QueueBindMethod is queue.bind (50.20).
type QueueBindMethod struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func (*QueueBindMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueBind) }
func (m *QueueBindMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.Exchange, &m.RoutingKey, &m.NoWait, &m.Arguments} }

// QueueBindOKMethod is queue.bind-ok (50.21).
type QueueBindOKMethod struct{}

func (*QueueBindOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueBindOK) }
func (*QueueBindOKMethod) arguments() []interface{} { return nil }

// QueuePurgeMethod is queue.purge (50.30).
type QueuePurgeMethod struct {
	Queue  string
	NoWait bool
}

func (*QueuePurgeMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueuePurge) }
func (m *QueuePurgeMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.NoWait} }

// QueuePurgeOKMethod is queue.purge-ok (50.31).
type QueuePurgeOKMethod struct {
	MessageCount uint32
}

func (*QueuePurgeOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueuePurgeOK) }
func (m *QueuePurgeOKMethod) arguments() []interface{} { return []interface{}{&m.MessageCount} }

// QueueDeleteMethod is queue.delete (50.40).
type QueueDeleteMethod struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (*QueueDeleteMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueDelete) }
func (m *QueueDeleteMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.IfUnused, &m.IfEmpty, &m.NoWait} }

// QueueDeleteOKMethod is queue.delete-ok (50.41).
type QueueDeleteOKMethod struct {
	MessageCount uint32
}

func (*QueueDeleteOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueDeleteOK) }
func (m *QueueDeleteOKMethod) arguments() []interface{} { return []interface{}{&m.MessageCount} }

// QueueUnbindMethod is queue.unbind (50.50).
type QueueUnbindMethod struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func (*QueueUnbindMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueUnbind) }
func (m *QueueUnbindMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.Exchange, &m.RoutingKey, &m.Arguments} }

// QueueUnbindOKMethod is queue.unbind-ok (50.51).
type QueueUnbindOKMethod struct{}

func (*QueueUnbindOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassQueue, QueueUnbindOK) }
func (*QueueUnbindOKMethod) arguments() []interface{} { return nil }

// BasicQosMethod sets the prefetch window.
type BasicQosMethod struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (*BasicQosMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicQos) }
func (m *BasicQosMethod) arguments() []interface{} { return []interface{}{&m.PrefetchSize, &m.PrefetchCount, &m.Global} }

// BasicQosOKMethod is basic.qos-ok (60.11).
type BasicQosOKMethod struct{}

func (*BasicQosOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicQosOK) }
func (*BasicQosOKMethod) arguments() []interface{} { return nil }

// BasicConsumeMethod starts a consumer.
type BasicConsumeMethod struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func (*BasicConsumeMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicConsume) }
func (m *BasicConsumeMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.ConsumerTag, &m.NoLocal, &m.NoAck, &m.Exclusive, &m.NoWait, &m.Arguments} }

// BasicConsumeOKMethod is basic.consume-ok (60.21).
type BasicConsumeOKMethod struct {
	ConsumerTag string
}

func (*BasicConsumeOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicConsumeOK) }
func (m *BasicConsumeOKMethod) arguments() []interface{} { return []interface{}{&m.ConsumerTag} }

// BasicCancelMethod ends a consumer. Brokers with consumer_cancel_notify send it too.
type BasicCancelMethod struct {
	ConsumerTag string
	NoWait      bool
}

func (*BasicCancelMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicCancel) }
func (m *BasicCancelMethod) arguments() []interface{} { return []interface{}{&m.ConsumerTag, &m.NoWait} }

// BasicCancelOKMethod is basic.cancel-ok (60.31).
type BasicCancelOKMethod struct {
	ConsumerTag string
}

func (*BasicCancelOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicCancelOK) }
func (m *BasicCancelOKMethod) arguments() []interface{} { return []interface{}{&m.ConsumerTag} }

// BasicPublishMethod publishes a message. Header and body frames follow.
type BasicPublishMethod struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (*BasicPublishMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicPublish) }
func (m *BasicPublishMethod) arguments() []interface{} { return []interface{}{&m.Exchange, &m.RoutingKey, &m.Mandatory, &m.Immediate} }

// BasicReturnMethod returns an unroutable mandatory message.
type BasicReturnMethod struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (*BasicReturnMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicReturn) }
func (m *BasicReturnMethod) arguments() []interface{} { return []interface{}{&m.ReplyCode, &m.ReplyText, &m.Exchange, &m.RoutingKey} }

// BasicDeliverMethod pushes a message to a consumer.
type BasicDeliverMethod struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (*BasicDeliverMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicDeliver) }
func (m *BasicDeliverMethod) arguments() []interface{} { return []interface{}{&m.ConsumerTag, &m.DeliveryTag, &m.Redelivered, &m.Exchange, &m.RoutingKey} }

// BasicGetMethod polls a single message.
type BasicGetMethod struct {
	Queue string
	NoAck bool
}

func (*BasicGetMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicGet) }
func (m *BasicGetMethod) arguments() []interface{} { return []interface{}{&m.Queue, &m.NoAck} }

// BasicGetOKMethod carries a polled message.
type BasicGetOKMethod struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (*BasicGetOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicGetOK) }
func (m *BasicGetOKMethod) arguments() []interface{} { return []interface{}{&m.DeliveryTag, &m.Redelivered, &m.Exchange, &m.RoutingKey, &m.MessageCount} }

// BasicGetEmptyMethod is basic.get-empty (60.72).
type BasicGetEmptyMethod struct{}

func (*BasicGetEmptyMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicGetEmpty) }
func (*BasicGetEmptyMethod) arguments() []interface{} { return nil }

// BasicAckMethod acknowledges deliveries, or confirms publishes in confirm mode.
type BasicAckMethod struct {
	DeliveryTag uint64
	Multiple    bool
}

func (*BasicAckMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicAck) }
func (m *BasicAckMethod) arguments() []interface{} { return []interface{}{&m.DeliveryTag, &m.Multiple} }

// BasicRejectMethod rejects a single delivery.
type BasicRejectMethod struct {
	DeliveryTag uint64
	Requeue     bool
}

func (*BasicRejectMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicReject) }
func (m *BasicRejectMethod) arguments() []interface{} { return []interface{}{&m.DeliveryTag, &m.Requeue} }

// BasicRecoverAsyncMethod is basic.recover-async (60.100).
type BasicRecoverAsyncMethod struct {
	Requeue bool
}

func (*BasicRecoverAsyncMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicRecoverAsync) }
func (m *BasicRecoverAsyncMethod) arguments() []interface{} { return []interface{}{&m.Requeue} }

// BasicRecoverMethod is basic.recover (60.110).
type BasicRecoverMethod struct {
	Requeue bool
}

func (*BasicRecoverMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicRecover) }
func (m *BasicRecoverMethod) arguments() []interface{} { return []interface{}{&m.Requeue} }

// BasicRecoverOKMethod is basic.recover-ok (60.111).
type BasicRecoverOKMethod struct{}

func (*BasicRecoverOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicRecoverOK) }
func (*BasicRecoverOKMethod) arguments() []interface{} { return nil }

// BasicNackMethod is the RabbitMQ multi-message reject.
type BasicNackMethod struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (*BasicNackMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassBasic, BasicNack) }
func (m *BasicNackMethod) arguments() []interface{} { return []interface{}{&m.DeliveryTag, &m.Multiple, &m.Requeue} }

// ConfirmSelectMethod puts the channel in publisher-confirm mode.
type ConfirmSelectMethod struct {
	Nowait bool
}

func (*ConfirmSelectMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConfirm, ConfirmSelect) }
func (m *ConfirmSelectMethod) arguments() []interface{} { return []interface{}{&m.Nowait} }

// ConfirmSelectOKMethod is confirm.select-ok (85.11).
type ConfirmSelectOKMethod struct{}

func (*ConfirmSelectOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassConfirm, ConfirmSelectOK) }
func (*ConfirmSelectOKMethod) arguments() []interface{} { return nil }

// TxSelectMethod is tx.select (90.10).
type TxSelectMethod struct{}

func (*TxSelectMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxSelect) }
func (*TxSelectMethod) arguments() []interface{} { return nil }

// TxSelectOKMethod is tx.select-ok (90.11).
type TxSelectOKMethod struct{}

func (*TxSelectOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxSelectOK) }
func (*TxSelectOKMethod) arguments() []interface{} { return nil }

// TxCommitMethod is tx.commit (90.20).
type TxCommitMethod struct{}

func (*TxCommitMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxCommit) }
func (*TxCommitMethod) arguments() []interface{} { return nil }

// TxCommitOKMethod is tx.commit-ok (90.21).
type TxCommitOKMethod struct{}

func (*TxCommitOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxCommitOK) }
func (*TxCommitOKMethod) arguments() []interface{} { return nil }

// TxRollbackMethod is tx.rollback (90.30).
type TxRollbackMethod struct{}

func (*TxRollbackMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxRollback) }
func (*TxRollbackMethod) arguments() []interface{} { return nil }

// TxRollbackOKMethod is tx.rollback-ok (90.31).
type TxRollbackOKMethod struct{}

func (*TxRollbackOKMethod) Descriptor() *MethodDescriptor { return methodTable.get(ClassTx, TxRollbackOK) }
func (*TxRollbackOKMethod) arguments() []interface{} { return nil }

var methodDefinitions = []methodDefinition{
	{
		classID: ClassConnection, methodID: ConnectionStart, name: "connection.start",
		synchronous: true,
		replyWith: []string{"connection.start-ok"},
		fields: []Field{
			{Name: "version-major", Domain: "octet", Type: TypeOctet},
			{Name: "version-minor", Domain: "octet", Type: TypeOctet},
			{Name: "server-properties", Domain: "peer-properties", Type: TypeTable},
			{Name: "mechanisms", Domain: "longstr", Type: TypeLongStr},
			{Name: "locales", Domain: "longstr", Type: TypeLongStr},
		},
		new: func() Method { return &ConnectionStartMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionStartOK, name: "connection.start-ok",
		synchronous: true,
		fields: []Field{
			{Name: "client-properties", Domain: "peer-properties", Type: TypeTable},
			{Name: "mechanism", Domain: "shortstr", Type: TypeShortStr},
			{Name: "response", Domain: "longstr", Type: TypeLongStr},
			{Name: "locale", Domain: "shortstr", Type: TypeShortStr},
		},
		new: func() Method { return &ConnectionStartOKMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionSecure, name: "connection.secure",
		synchronous: true,
		replyWith: []string{"connection.secure-ok"},
		fields: []Field{
			{Name: "challenge", Domain: "longstr", Type: TypeLongStr},
		},
		new: func() Method { return &ConnectionSecureMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionSecureOK, name: "connection.secure-ok",
		synchronous: true,
		fields: []Field{
			{Name: "response", Domain: "longstr", Type: TypeLongStr},
		},
		new: func() Method { return &ConnectionSecureOKMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionTune, name: "connection.tune",
		synchronous: true,
		replyWith: []string{"connection.tune-ok"},
		fields: []Field{
			{Name: "channel-max", Domain: "short", Type: TypeShort},
			{Name: "frame-max", Domain: "long", Type: TypeLong},
			{Name: "heartbeat", Domain: "short", Type: TypeShort},
		},
		new: func() Method { return &ConnectionTuneMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionTuneOK, name: "connection.tune-ok",
		synchronous: true,
		fields: []Field{
			{Name: "channel-max", Domain: "short", Type: TypeShort},
			{Name: "frame-max", Domain: "long", Type: TypeLong},
			{Name: "heartbeat", Domain: "short", Type: TypeShort},
		},
		new: func() Method { return &ConnectionTuneOKMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionOpen, name: "connection.open",
		synchronous: true,
		replyWith: []string{"connection.open-ok"},
		fields: []Field{
			{Name: "virtual-host", Domain: "path", Type: TypeShortStr},
			{Name: "reserved-1", Domain: "shortstr", Type: TypeShortStr, Reserved: true},
			{Name: "reserved-2", Domain: "bit", Type: TypeBit, Reserved: true},
		},
		new: func() Method { return &ConnectionOpenMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionOpenOK, name: "connection.open-ok",
		synchronous: true,
		fields: []Field{
			{Name: "reserved-1", Domain: "shortstr", Type: TypeShortStr, Reserved: true},
		},
		new: func() Method { return &ConnectionOpenOKMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionClose, name: "connection.close",
		synchronous: true,
		replyWith: []string{"connection.close-ok"},
		fields: []Field{
			{Name: "reply-code", Domain: "reply-code", Type: TypeShort},
			{Name: "reply-text", Domain: "reply-text", Type: TypeShortStr},
			{Name: "class-id", Domain: "class-id", Type: TypeShort},
			{Name: "method-id", Domain: "method-id", Type: TypeShort},
		},
		new: func() Method { return &ConnectionCloseMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionCloseOK, name: "connection.close-ok",
		synchronous: true,
		new: func() Method { return &ConnectionCloseOKMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionBlocked, name: "connection.blocked",
		fields: []Field{
			{Name: "reason", Domain: "shortstr", Type: TypeShortStr},
		},
		new: func() Method { return &ConnectionBlockedMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionUnblocked, name: "connection.unblocked",
		new: func() Method { return &ConnectionUnblockedMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionUpdateSecret, name: "connection.update-secret",
		synchronous: true,
		replyWith: []string{"connection.update-secret-ok"},
		fields: []Field{
			{Name: "new-secret", Domain: "longstr", Type: TypeLongStr},
			{Name: "reason", Domain: "shortstr", Type: TypeShortStr},
		},
		new: func() Method { return &ConnectionUpdateSecretMethod{} },
	},
	{
		classID: ClassConnection, methodID: ConnectionUpdateSecretOK, name: "connection.update-secret-ok",
		synchronous: true,
		new: func() Method { return &ConnectionUpdateSecretOKMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelOpen, name: "channel.open",
		synchronous: true,
		replyWith: []string{"channel.open-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "shortstr", Type: TypeShortStr, Reserved: true},
		},
		new: func() Method { return &ChannelOpenMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelOpenOK, name: "channel.open-ok",
		synchronous: true,
		fields: []Field{
			{Name: "reserved-1", Domain: "longstr", Type: TypeLongStr, Reserved: true},
		},
		new: func() Method { return &ChannelOpenOKMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelFlow, name: "channel.flow",
		synchronous: true,
		replyWith: []string{"channel.flow-ok"},
		fields: []Field{
			{Name: "active", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &ChannelFlowMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelFlowOK, name: "channel.flow-ok",
		fields: []Field{
			{Name: "active", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &ChannelFlowOKMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelClose, name: "channel.close",
		synchronous: true,
		replyWith: []string{"channel.close-ok"},
		fields: []Field{
			{Name: "reply-code", Domain: "reply-code", Type: TypeShort},
			{Name: "reply-text", Domain: "reply-text", Type: TypeShortStr},
			{Name: "class-id", Domain: "class-id", Type: TypeShort},
			{Name: "method-id", Domain: "method-id", Type: TypeShort},
		},
		new: func() Method { return &ChannelCloseMethod{} },
	},
	{
		classID: ClassChannel, methodID: ChannelCloseOK, name: "channel.close-ok",
		synchronous: true,
		new: func() Method { return &ChannelCloseOKMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeDeclare, name: "exchange.declare",
		synchronous: true,
		replyWith: []string{"exchange.declare-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "type", Domain: "shortstr", Type: TypeShortStr},
			{Name: "passive", Domain: "bit", Type: TypeBit},
			{Name: "durable", Domain: "bit", Type: TypeBit},
			{Name: "auto-delete", Domain: "bit", Type: TypeBit},
			{Name: "internal", Domain: "bit", Type: TypeBit},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &ExchangeDeclareMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeDeclareOK, name: "exchange.declare-ok",
		synchronous: true,
		new: func() Method { return &ExchangeDeclareOKMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeDelete, name: "exchange.delete",
		synchronous: true,
		replyWith: []string{"exchange.delete-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "if-unused", Domain: "bit", Type: TypeBit},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
		},
		new: func() Method { return &ExchangeDeleteMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeDeleteOK, name: "exchange.delete-ok",
		synchronous: true,
		new: func() Method { return &ExchangeDeleteOKMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeBind, name: "exchange.bind",
		synchronous: true,
		replyWith: []string{"exchange.bind-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "destination", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "source", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &ExchangeBindMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeBindOK, name: "exchange.bind-ok",
		synchronous: true,
		new: func() Method { return &ExchangeBindOKMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeUnbind, name: "exchange.unbind",
		synchronous: true,
		replyWith: []string{"exchange.unbind-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "destination", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "source", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &ExchangeUnbindMethod{} },
	},
	{
		classID: ClassExchange, methodID: ExchangeUnbindOK, name: "exchange.unbind-ok",
		synchronous: true,
		new: func() Method { return &ExchangeUnbindOKMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueDeclare, name: "queue.declare",
		synchronous: true,
		replyWith: []string{"queue.declare-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "passive", Domain: "bit", Type: TypeBit},
			{Name: "durable", Domain: "bit", Type: TypeBit},
			{Name: "exclusive", Domain: "bit", Type: TypeBit},
			{Name: "auto-delete", Domain: "bit", Type: TypeBit},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &QueueDeclareMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueDeclareOK, name: "queue.declare-ok",
		synchronous: true,
		fields: []Field{
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "message-count", Domain: "message-count", Type: TypeLong},
			{Name: "consumer-count", Domain: "long", Type: TypeLong},
		},
		new: func() Method { return &QueueDeclareOKMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueBind, name: "queue.bind",
		synchronous: true,
		replyWith: []string{"queue.bind-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &QueueBindMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueBindOK, name: "queue.bind-ok",
		synchronous: true,
		new: func() Method { return &QueueBindOKMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueuePurge, name: "queue.purge",
		synchronous: true,
		replyWith: []string{"queue.purge-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
		},
		new: func() Method { return &QueuePurgeMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueuePurgeOK, name: "queue.purge-ok",
		synchronous: true,
		fields: []Field{
			{Name: "message-count", Domain: "message-count", Type: TypeLong},
		},
		new: func() Method { return &QueuePurgeOKMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueDelete, name: "queue.delete",
		synchronous: true,
		replyWith: []string{"queue.delete-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "if-unused", Domain: "bit", Type: TypeBit},
			{Name: "if-empty", Domain: "bit", Type: TypeBit},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
		},
		new: func() Method { return &QueueDeleteMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueDeleteOK, name: "queue.delete-ok",
		synchronous: true,
		fields: []Field{
			{Name: "message-count", Domain: "message-count", Type: TypeLong},
		},
		new: func() Method { return &QueueDeleteOKMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueUnbind, name: "queue.unbind",
		synchronous: true,
		replyWith: []string{"queue.unbind-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &QueueUnbindMethod{} },
	},
	{
		classID: ClassQueue, methodID: QueueUnbindOK, name: "queue.unbind-ok",
		synchronous: true,
		new: func() Method { return &QueueUnbindOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicQos, name: "basic.qos",
		synchronous: true,
		replyWith: []string{"basic.qos-ok"},
		fields: []Field{
			{Name: "prefetch-size", Domain: "long", Type: TypeLong},
			{Name: "prefetch-count", Domain: "short", Type: TypeShort},
			{Name: "global", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicQosMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicQosOK, name: "basic.qos-ok",
		synchronous: true,
		new: func() Method { return &BasicQosOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicConsume, name: "basic.consume",
		synchronous: true,
		replyWith: []string{"basic.consume-ok"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "consumer-tag", Domain: "consumer-tag", Type: TypeShortStr},
			{Name: "no-local", Domain: "no-local", Type: TypeBit},
			{Name: "no-ack", Domain: "no-ack", Type: TypeBit},
			{Name: "exclusive", Domain: "bit", Type: TypeBit},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
			{Name: "arguments", Domain: "table", Type: TypeTable},
		},
		new: func() Method { return &BasicConsumeMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicConsumeOK, name: "basic.consume-ok",
		synchronous: true,
		fields: []Field{
			{Name: "consumer-tag", Domain: "consumer-tag", Type: TypeShortStr},
		},
		new: func() Method { return &BasicConsumeOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicCancel, name: "basic.cancel",
		synchronous: true,
		replyWith: []string{"basic.cancel-ok"},
		fields: []Field{
			{Name: "consumer-tag", Domain: "consumer-tag", Type: TypeShortStr},
			{Name: "no-wait", Domain: "no-wait", Type: TypeBit},
		},
		new: func() Method { return &BasicCancelMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicCancelOK, name: "basic.cancel-ok",
		synchronous: true,
		fields: []Field{
			{Name: "consumer-tag", Domain: "consumer-tag", Type: TypeShortStr},
		},
		new: func() Method { return &BasicCancelOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicPublish, name: "basic.publish",
		content: true,
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "mandatory", Domain: "bit", Type: TypeBit},
			{Name: "immediate", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicPublishMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicReturn, name: "basic.return",
		content: true,
		fields: []Field{
			{Name: "reply-code", Domain: "reply-code", Type: TypeShort},
			{Name: "reply-text", Domain: "reply-text", Type: TypeShortStr},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
		},
		new: func() Method { return &BasicReturnMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicDeliver, name: "basic.deliver",
		content: true,
		fields: []Field{
			{Name: "consumer-tag", Domain: "consumer-tag", Type: TypeShortStr},
			{Name: "delivery-tag", Domain: "delivery-tag", Type: TypeLongLong},
			{Name: "redelivered", Domain: "redelivered", Type: TypeBit},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
		},
		new: func() Method { return &BasicDeliverMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicGet, name: "basic.get",
		synchronous: true,
		replyWith: []string{"basic.get-ok", "basic.get-empty"},
		fields: []Field{
			{Name: "reserved-1", Domain: "short", Type: TypeShort, Reserved: true},
			{Name: "queue", Domain: "queue-name", Type: TypeShortStr},
			{Name: "no-ack", Domain: "no-ack", Type: TypeBit},
		},
		new: func() Method { return &BasicGetMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicGetOK, name: "basic.get-ok",
		synchronous: true, content: true,
		fields: []Field{
			{Name: "delivery-tag", Domain: "delivery-tag", Type: TypeLongLong},
			{Name: "redelivered", Domain: "redelivered", Type: TypeBit},
			{Name: "exchange", Domain: "exchange-name", Type: TypeShortStr},
			{Name: "routing-key", Domain: "shortstr", Type: TypeShortStr},
			{Name: "message-count", Domain: "message-count", Type: TypeLong},
		},
		new: func() Method { return &BasicGetOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicGetEmpty, name: "basic.get-empty",
		synchronous: true,
		fields: []Field{
			{Name: "reserved-1", Domain: "shortstr", Type: TypeShortStr, Reserved: true},
		},
		new: func() Method { return &BasicGetEmptyMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicAck, name: "basic.ack",
		fields: []Field{
			{Name: "delivery-tag", Domain: "delivery-tag", Type: TypeLongLong},
			{Name: "multiple", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicAckMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicReject, name: "basic.reject",
		fields: []Field{
			{Name: "delivery-tag", Domain: "delivery-tag", Type: TypeLongLong},
			{Name: "requeue", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicRejectMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicRecoverAsync, name: "basic.recover-async",
		fields: []Field{
			{Name: "requeue", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicRecoverAsyncMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicRecover, name: "basic.recover",
		synchronous: true,
		replyWith: []string{"basic.recover-ok"},
		fields: []Field{
			{Name: "requeue", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicRecoverMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicRecoverOK, name: "basic.recover-ok",
		synchronous: true,
		new: func() Method { return &BasicRecoverOKMethod{} },
	},
	{
		classID: ClassBasic, methodID: BasicNack, name: "basic.nack",
		fields: []Field{
			{Name: "delivery-tag", Domain: "delivery-tag", Type: TypeLongLong},
			{Name: "multiple", Domain: "bit", Type: TypeBit},
			{Name: "requeue", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &BasicNackMethod{} },
	},
	{
		classID: ClassConfirm, methodID: ConfirmSelect, name: "confirm.select",
		synchronous: true,
		replyWith: []string{"confirm.select-ok"},
		fields: []Field{
			{Name: "nowait", Domain: "bit", Type: TypeBit},
		},
		new: func() Method { return &ConfirmSelectMethod{} },
	},
	{
		classID: ClassConfirm, methodID: ConfirmSelectOK, name: "confirm.select-ok",
		synchronous: true,
		new: func() Method { return &ConfirmSelectOKMethod{} },
	},
	{
		classID: ClassTx, methodID: TxSelect, name: "tx.select",
		synchronous: true,
		replyWith: []string{"tx.select-ok"},
		new: func() Method { return &TxSelectMethod{} },
	},
	{
		classID: ClassTx, methodID: TxSelectOK, name: "tx.select-ok",
		synchronous: true,
		new: func() Method { return &TxSelectOKMethod{} },
	},
	{
		classID: ClassTx, methodID: TxCommit, name: "tx.commit",
		synchronous: true,
		replyWith: []string{"tx.commit-ok"},
		new: func() Method { return &TxCommitMethod{} },
	},
	{
		classID: ClassTx, methodID: TxCommitOK, name: "tx.commit-ok",
		synchronous: true,
		new: func() Method { return &TxCommitOKMethod{} },
	},
	{
		classID: ClassTx, methodID: TxRollback, name: "tx.rollback",
		synchronous: true,
		replyWith: []string{"tx.rollback-ok"},
		new: func() Method { return &TxRollbackMethod{} },
	},
	{
		classID: ClassTx, methodID: TxRollbackOK, name: "tx.rollback-ok",
		synchronous: true,
		new: func() Method { return &TxRollbackOKMethod{} },
	},
}
