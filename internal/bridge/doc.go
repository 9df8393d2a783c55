// Package bridge mirrors cocoro appliances onto an MQTT broker.
//
// Each device's status is published as retained JSON on
// <prefix>/<deviceId>/state when the bridge starts, after every command and
// on a poll interval. Commands arrive on <prefix>/<deviceId>/set/<attr>
// where attr is one of power, mode, windspeed, temperature or humidify.
// Availability is published on <prefix>/bridge/status, with the broker's
// last will covering unexpected disconnects.
//
// Client wraps paho.mqtt.golang; Bridge holds the command logic and only
// depends on the Transport and Cloud interfaces.
package bridge
